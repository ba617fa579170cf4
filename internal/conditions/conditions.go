// Package conditions computes the distinct builds a package needs for the
// conditions used in its imports field, and synthesizes the condition object
// of the exports field that routes every combination of conditions to its
// build.
//
// Everything here is pure: no I/O, no shared state. The work is exponential
// in the number of distinct conditions (every combination is resolved), so
// the pipeline refuses to run above a configured limit.
package conditions

import (
	"sort"
	"strings"
)

// conditions reserved by the Node.js resolver and TypeScript
var bannedConditions = map[string]bool{
	"import":  true,
	"require": true,
	"module":  true,
	"types":   true,
}

// IsBannedCondition returns true if the condition can't be used in the
// imports field.
func IsBannedCondition(condition string) bool {
	return bannedConditions[condition] || strings.HasPrefix(condition, "types@")
}

// Conditions returns the sorted, deduplicated condition names used in the
// imports field. The sort order is the canonical order of the enumeration.
func Conditions(imports *Imports) ([]string, error) {
	names := map[string]struct{}{}
	for _, entry := range imports.Entries {
		if err := collectConditions(entry.Tree, names); err != nil {
			return nil, err
		}
	}
	conditions := make([]string, 0, len(names))
	for name := range names {
		conditions = append(conditions, name)
	}
	sort.Strings(conditions)
	return conditions, nil
}

func collectConditions(tree *Tree, names map[string]struct{}) error {
	if tree.Kind != KindConditions {
		return nil
	}
	for _, branch := range tree.Branches {
		if branch.Condition != "default" {
			if IsBannedCondition(branch.Condition) {
				return &BannedConditionError{Condition: branch.Condition}
			}
			names[branch.Condition] = struct{}{}
		}
		if err := collectConditions(branch.Tree, names); err != nil {
			return err
		}
	}
	return nil
}
