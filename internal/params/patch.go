package params

import "sort"

// Patch is the explicit output of one transformation: the keys it produces
// and the keys it consumes.
type Patch struct {
	Set    map[string]Value
	Delete []string
}

func NewPatch() Patch {
	return Patch{Set: make(map[string]Value)}
}

// Put records a produced key.
func (p *Patch) Put(key string, v Value) {
	if p.Set == nil {
		p.Set = make(map[string]Value)
	}
	p.Set[key] = v
	p.Delete = without(p.Delete, key)
}

// Remove records consumed keys, dropping any pending put for them.
func (p *Patch) Remove(keys ...string) {
	for _, k := range keys {
		delete(p.Set, k)
		p.Delete = append(without(p.Delete, k), k)
	}
}

// Merge applies q on top of p; the later operation on a key wins.
func (p *Patch) Merge(q Patch) {
	p.Remove(q.Delete...)
	for k, v := range q.Set {
		p.Put(k, v)
	}
}

func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Delete) == 0
}

func without(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

// Produced returns the sorted produced keys.
func (p Patch) Produced() []string {
	out := make([]string, 0, len(p.Set))
	for k := range p.Set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Consumed returns the sorted, de-duplicated consumed keys.
func (p Patch) Consumed() []string {
	seen := make(map[string]struct{}, len(p.Delete))
	out := make([]string, 0, len(p.Delete))
	for _, k := range p.Delete {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
