package learning

import (
	"fmt"
	"sort"
	"strings"
)

// Params is one assignment of values to hyperparameter names.
type Params map[string]interface{}

// String renders the parameters sorted by name.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(s, ", ")
}

// Grid maps hyperparameter names to the values they may take.
type Grid map[string][]interface{}

// Iter expands the grid into the cartesian product of its values. Names are visited in sorted order and the last
// name varies fastest, so the expansion is deterministic. A name with no values yields no parameters at all.
func (g Grid) Iter() []Params {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []Params{{}}
	for _, k := range keys {
		var next []Params
		for _, p := range out {
			for _, v := range g[k] {
				q := make(Params, len(p)+1)
				for pk, pv := range p {
					q[pk] = pv
				}
				q[k] = v
				next = append(next, q)
			}
		}
		out = next
	}
	return out
}

// Grids is a union of grids, expanded one after the other.
type Grids []Grid

// Iter expands each grid in order.
func (gs Grids) Iter() []Params {
	var out []Params
	for _, g := range gs {
		out = append(out, g.Iter()...)
	}
	return out
}
