package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// pathKeys hold file paths. A relative value is resolved against the
// directory of the file that declares it, so an included file can name its
// own curve or store next to itself.
var pathKeys = []string{
	"app.log_path",
	"source.path",
	"operating.soc_definition.data_path",
	"store.path",
	"http.root",
	"output.path",
}

// layer is one config file, read once, with its paths resolved.
type layer struct {
	path     string
	settings map[string]any
	includes []string
}

// Load reads the run configuration at path together with its includes.
// Included files are merged first, so the including file wins. Exactly one
// file may declare the parameter source.
func Load(path string) (*Config, error) {
	layers, err := resolveConfigIncludes(path)
	if err != nil {
		return nil, err
	}
	if err := checkSourceOwner(layers); err != nil {
		return nil, err
	}
	v := viper.New()
	for _, l := range layers {
		if err := v.MergeConfigMap(l.settings); err != nil {
			return nil, fmt.Errorf("merging config file failed (%s): %w", l.path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	cfg.dir = filepath.Dir(layers[len(layers)-1].path)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigIncludes(path string) ([]layer, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return collectLayers(abs, make(map[string]bool), make(map[string]bool))
}

func collectLayers(path string, seen, stack map[string]bool) ([]layer, error) {
	path = filepath.Clean(path)
	if stack[path] {
		return nil, fmt.Errorf("include cycle detected: %s", path)
	}
	if seen[path] {
		return nil, nil
	}
	stack[path] = true
	l, err := readLayer(path)
	if err != nil {
		return nil, err
	}
	var ordered []layer
	for _, inc := range l.includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		sub, err := collectLayers(inc, seen, stack)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, sub...)
	}
	delete(stack, path)
	seen[path] = true
	return append(ordered, l), nil
}

func readLayer(path string) (layer, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return layer{}, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	settings := v.AllSettings()
	includes, err := includeList(settings["include"])
	if err != nil {
		return layer{}, fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	delete(settings, "include")
	resolvePaths(settings, filepath.Dir(path))
	return layer{path: path, settings: settings, includes: includes}, nil
}

func includeList(raw any) ([]string, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("include entries must be strings")
			}
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("include must be a file name or a list of them")
	}
}

// resolvePaths rewrites the relative pathKeys in settings against dir.
func resolvePaths(settings map[string]any, dir string) {
	for _, key := range pathKeys {
		parts := strings.Split(key, ".")
		node := settings
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = next
		}
		if node == nil {
			continue
		}
		leaf := parts[len(parts)-1]
		s, ok := node[leaf].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" && !filepath.IsAbs(s) {
			node[leaf] = filepath.Join(dir, s)
		}
	}
}

// checkSourceOwner rejects include graphs where more than one file names a
// source.
func checkSourceOwner(layers []layer) error {
	owner := ""
	for _, l := range layers {
		if _, ok := l.settings["source"]; !ok {
			continue
		}
		if owner != "" {
			return fmt.Errorf("source is declared in both %s and %s", owner, l.path)
		}
		owner = l.path
	}
	return nil
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}
