package conditions

import (
	"bytes"
	"encoding/json"
)

// ExportsTree is a condition object of the exports field whose leaves are
// chosen by the caller, typically the path of a build's output file.
// A tree without branches is a leaf.
type ExportsTree[L comparable] struct {
	Leaf     L
	Branches []ExportsBranch[L]
}

// ExportsBranch is a single `condition: subtree` entry of an exports tree.
type ExportsBranch[L comparable] struct {
	Condition string
	Tree      *ExportsTree[L]
}

// IsLeaf returns true if the tree is a leaf.
func (t *ExportsTree[L]) IsLeaf() bool {
	return len(t.Branches) == 0
}

// Equal reports whether both trees have the same shape and leaves.
func (t *ExportsTree[L]) Equal(other *ExportsTree[L]) bool {
	if t == other {
		return true
	}
	if t.IsLeaf() || other.IsLeaf() {
		return t.IsLeaf() && other.IsLeaf() && t.Leaf == other.Leaf
	}
	if len(t.Branches) != len(other.Branches) {
		return false
	}
	for i, branch := range t.Branches {
		if branch.Condition != other.Branches[i].Condition || !branch.Tree.Equal(other.Branches[i].Tree) {
			return false
		}
	}
	return true
}

// Resolve evaluates the tree for the combination with the condition matching
// of Node.js.
func (t *ExportsTree[L]) Resolve(c Combination) (leaf L, ok bool) {
	if t.IsLeaf() {
		return t.Leaf, true
	}
	for _, branch := range t.Branches {
		if branch.Condition == "default" || c.Has(branch.Condition) {
			if leaf, ok = branch.Tree.Resolve(c); ok {
				return
			}
		}
	}
	return
}

// MarshalJSON implements the json.Marshaler interface
func (t *ExportsTree[L]) MarshalJSON() ([]byte, error) {
	if t.IsLeaf() {
		return json.Marshal(t.Leaf)
	}
	buf := bytes.NewBuffer(nil)
	buf.WriteByte('{')
	for i, branch := range t.Branches {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(branch.Condition)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := branch.Tree.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Synthesize builds the smallest condition object that resolves every
// combination to toLeaf of its build's representative.
//
// Conditions are nested in the order of ConditionOrder. For each condition
// the subtrees with and without it are built; if they are equal the
// condition doesn't matter at that position and is left out, otherwise it is
// checked before the branches of the subtree without it.
func Synthesize[L comparable](builds *Builds, toLeaf func(Combination) L) (*ExportsTree[L], error) {
	s := &synthesizer[L]{leaves: make(map[string]L, len(builds.byMember))}
	for _, build := range builds.list {
		leaf := toLeaf(build.Representative)
		for _, member := range build.Members {
			s.leaves[member.Key()] = leaf
		}
	}
	return s.build(ConditionOrder(builds), Combination{})
}

type synthesizer[L comparable] struct {
	leaves map[string]L
}

func (s *synthesizer[L]) build(conditions []string, parent Combination) (*ExportsTree[L], error) {
	if len(conditions) == 0 {
		c := parent.sorted()
		leaf, ok := s.leaves[c.Key()]
		if !ok {
			return nil, &InternalError{Message: "missing build for " + c.String()}
		}
		return &ExportsTree[L]{Leaf: leaf}, nil
	}

	current, rest := conditions[0], conditions[1:]
	withCurrent, err := s.build(rest, parent.with(current))
	if err != nil {
		return nil, err
	}
	withoutCurrent, err := s.build(rest, parent)
	if err != nil {
		return nil, err
	}

	if withCurrent.Equal(withoutCurrent) {
		return withoutCurrent, nil
	}
	if withoutCurrent.IsLeaf() {
		return &ExportsTree[L]{
			Branches: []ExportsBranch[L]{
				{Condition: current, Tree: withCurrent},
				{Condition: "default", Tree: withoutCurrent},
			},
		}, nil
	}
	branches := make([]ExportsBranch[L], 0, len(withoutCurrent.Branches)+1)
	branches = append(branches, ExportsBranch[L]{Condition: current, Tree: withCurrent})
	branches = append(branches, withoutCurrent.Branches...)
	return &ExportsTree[L]{Branches: branches}, nil
}
