package conditions

import (
	"strconv"
	"strings"
)

// Resolution is the leaves resolved for one combination, one per specifier in
// declared order.
type Resolution []Leaf

// Key returns a string that is equal for structurally equal resolutions.
func (r Resolution) Key() string {
	var b strings.Builder
	for _, leaf := range r {
		if leaf.Null {
			b.WriteByte('n')
		} else {
			b.WriteByte('s')
			b.WriteString(strconv.Itoa(len(leaf.Path)))
			b.WriteByte(':')
			b.WriteString(leaf.Path)
		}
	}
	return b.String()
}

// Resolve resolves the tree for the combination the way Node.js matches
// conditions: in declared order, "default" always matches and the first
// matching branch that resolves wins.
// It returns false if no branch resolves.
// see https://nodejs.org/api/packages.html#conditional-exports
func Resolve(tree *Tree, c Combination) (Leaf, bool) {
	switch tree.Kind {
	case KindPath:
		return Leaf{Path: tree.Path}, true
	case KindNull:
		return Leaf{Null: true}, true
	}
	for _, branch := range tree.Branches {
		if branch.Condition == "default" || c.Has(branch.Condition) {
			if leaf, ok := Resolve(branch.Tree, c); ok {
				return leaf, true
			}
		}
	}
	return Leaf{}, false
}

// ResolveAll resolves every specifier of the imports field for the combination.
func ResolveAll(imports *Imports, c Combination) (Resolution, error) {
	resolution := make(Resolution, len(imports.Entries))
	for i, entry := range imports.Entries {
		leaf, ok := Resolve(entry.Tree, c)
		if !ok {
			return nil, &MissingDefaultError{Specifier: entry.Specifier}
		}
		resolution[i] = leaf
	}
	return resolution, nil
}
