// Package bpx reads BPX battery parameter documents: it resolves parent
// index files to a concrete parameter set, validates the document shape and
// flattens it into a params.Set at SOC 1.
package bpx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
)

var (
	ErrNoHeader    = errors.New("bpx: no valid JSON header")
	ErrNotParent   = errors.New("bpx: parameter set selection requires a BPX Parent document")
	ErrUnknownSet  = errors.New("bpx: parameter set not defined")
	ErrInvalidJSON = errors.New("bpx: invalid JSON")
)

// Kind is the document kind named by the header.
type Kind int

const (
	KindDocument Kind = iota + 1
	KindParent
)

// Index is the content of a BPX Parent document.
type Index struct {
	Default string
	// Sets maps a set name to its file name without the .json suffix.
	Sets map[string]string
}

// Names returns the sorted set names.
func (ix Index) Names() []string {
	out := make([]string, 0, len(ix.Sets))
	for k := range ix.Sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func readJSON(path string) (gjson.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w at %s", ErrInvalidJSON, path)
	}
	return gjson.ParseBytes(raw), nil
}

// sniff classifies a parsed document by its header.
func sniff(doc gjson.Result, path string) (Kind, error) {
	header := doc.Get("Header")
	if !header.IsObject() {
		return 0, fmt.Errorf("%w at %s", ErrNoHeader, path)
	}
	switch {
	case header.Get("BPX").Exists():
		return KindDocument, nil
	case header.Get("BPX Parent").Exists():
		return KindParent, nil
	default:
		return 0, fmt.Errorf("%w at %s", ErrNoHeader, path)
	}
}

func readIndex(doc gjson.Result) Index {
	ix := Index{
		Default: doc.Get("Header.default").String(),
		Sets:    make(map[string]string),
	}
	doc.Get("Parameter Sets").ForEach(func(k, v gjson.Result) bool {
		ix.Sets[k.String()] = v.String()
		return true
	})
	return ix
}

// ReadIndex returns the parameter sets of a parent document.
func ReadIndex(path string) (Index, error) {
	doc, err := readJSON(path)
	if err != nil {
		return Index{}, err
	}
	kind, err := sniff(doc, path)
	if err != nil {
		return Index{}, err
	}
	if kind != KindParent {
		return Index{}, fmt.Errorf("%s is a direct BPX document: %w", path, ErrNotParent)
	}
	return readIndex(doc), nil
}

// ListParameterSets returns the sorted set names of a parent document.
func ListParameterSets(path string) ([]string, error) {
	ix, err := ReadIndex(path)
	if err != nil {
		return nil, err
	}
	return ix.Names(), nil
}

// ResolveSource returns the path of the BPX document to load. A direct
// document resolves to itself and rejects a set name; a parent document
// resolves set (or its default) to a sibling "<file>.json".
func ResolveSource(path, set string) (string, error) {
	doc, err := readJSON(path)
	if err != nil {
		return "", err
	}
	kind, err := sniff(doc, path)
	if err != nil {
		return "", err
	}
	if kind == KindDocument {
		if set != "" {
			return "", ErrNotParent
		}
		return path, nil
	}
	ix := readIndex(doc)
	if set == "" {
		set = ix.Default
	}
	file, ok := ix.Sets[set]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrUnknownSet, set, path)
	}
	return filepath.Join(filepath.Dir(path), file+".json"), nil
}
