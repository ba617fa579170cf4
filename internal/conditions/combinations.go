package conditions

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Combination is a set of conditions active at the same time, kept sorted.
type Combination []string

// Has returns true if the condition is active in the combination.
func (c Combination) Has(condition string) bool {
	for _, name := range c {
		if name == condition {
			return true
		}
	}
	return false
}

// Key returns a string uniquely identifying the combination.
func (c Combination) Key() string {
	var b strings.Builder
	for _, name := range c {
		b.WriteString(strconv.Itoa(len(name)))
		b.WriteByte(':')
		b.WriteString(name)
	}
	return b.String()
}

func (c Combination) String() string {
	return "[" + strings.Join(c, ", ") + "]"
}

// MarshalJSON implements the json.Marshaler interface
func (c Combination) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

func (c Combination) with(condition string) Combination {
	a := make(Combination, len(c)+1)
	copy(a, c)
	a[len(c)] = condition
	return a
}

func (c Combination) sorted() Combination {
	a := make(Combination, len(c))
	copy(a, c)
	sort.Strings(a)
	return a
}

// Combinations returns every combination of the given conditions, 2^len(conditions)
// of them. Starting with the empty combination, each condition doubles the list
// by appending a copy of every existing combination with the condition added.
// The order is relied on: among builds' members of equal size, the first one
// generated becomes the representative.
func Combinations(conditions []string) []Combination {
	combinations := make([]Combination, 1, 1<<len(conditions))
	combinations[0] = Combination{}
	for _, condition := range conditions {
		n := len(combinations)
		for i := 0; i < n; i++ {
			combinations = append(combinations, combinations[i].with(condition))
		}
	}
	return combinations
}
