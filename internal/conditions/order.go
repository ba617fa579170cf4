package conditions

import (
	"sort"
)

type conditionStats struct {
	// builds whose representative has the condition
	buildCount int
	// member combinations, of any build, having the condition
	inBuildCount int
}

// lessCondition orders conditions by ascending buildCount-inBuildCount, then
// by descending buildCount.
func lessCondition(a, b conditionStats) bool {
	da := a.buildCount - a.inBuildCount
	db := b.buildCount - b.inBuildCount
	if da != db {
		return da < db
	}
	return a.buildCount > b.buildCount
}

// ConditionOrder returns the order in which conditions are nested in the
// synthesized exports tree, the first one outermost.
// The order only affects the shape of the tree, not where it resolves to, but
// it is kept stable so published exports fields don't change.
func ConditionOrder(builds *Builds) []string {
	stats := make(map[string]*conditionStats, len(builds.conditions))
	for _, condition := range builds.conditions {
		stats[condition] = &conditionStats{}
	}
	for _, build := range builds.list {
		for _, condition := range build.Representative {
			stats[condition].buildCount++
		}
		for _, member := range build.Members {
			for _, condition := range member {
				stats[condition].inBuildCount++
			}
		}
	}

	order := make([]string, len(builds.conditions))
	copy(order, builds.conditions)
	sort.Strings(order)
	sort.SliceStable(order, func(i, j int) bool {
		return lessCondition(*stats[order[i]], *stats[order[j]])
	})
	return order
}
