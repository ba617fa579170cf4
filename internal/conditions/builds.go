package conditions

// Build is a group of combinations resolving every specifier to the same
// leaves, so one physical build serves all of them.
type Build struct {
	// Representative is the member with the fewest conditions, the first
	// generated one among equals.
	Representative Combination   `json:"representative"`
	Members        []Combination `json:"members"`
	Resolution     Resolution    `json:"resolution"`
}

// Builds is the partition of all combinations into builds, ordered by the
// first generated member of each build.
type Builds struct {
	conditions []string
	list       []*Build
	byKey      map[string]*Build
	byMember   map[string]*Build
}

// ComputeBuilds resolves the imports for every combination of the conditions
// and groups combinations with identical resolutions.
func ComputeBuilds(conditions []string, imports *Imports) (*Builds, error) {
	combinations := Combinations(conditions)
	builds := &Builds{
		conditions: conditions,
		byMember:   make(map[string]*Build, len(combinations)),
	}
	byResolution := map[string]*Build{}
	for _, c := range combinations {
		resolution, err := ResolveAll(imports, c)
		if err != nil {
			return nil, err
		}
		key := resolution.Key()
		build, ok := byResolution[key]
		if !ok {
			build = &Build{Representative: c, Resolution: resolution}
			byResolution[key] = build
			builds.list = append(builds.list, build)
		} else if len(c) < len(build.Representative) {
			build.Representative = c
		}
		build.Members = append(build.Members, c)
		builds.byMember[c.Key()] = build
	}
	builds.byKey = make(map[string]*Build, len(builds.list))
	for _, build := range builds.list {
		builds.byKey[build.Representative.Key()] = build
	}
	return builds, nil
}

// Conditions returns the canonical condition list the builds were computed for.
func (b *Builds) Conditions() []string {
	return b.conditions
}

// Len returns the number of builds.
func (b *Builds) Len() int {
	return len(b.list)
}

// List returns the builds in order.
func (b *Builds) List() []*Build {
	return b.list
}

// Representatives returns the representative combination of every build.
func (b *Builds) Representatives() []Combination {
	reps := make([]Combination, len(b.list))
	for i, build := range b.list {
		reps[i] = build.Representative
	}
	return reps
}

// Get returns the build represented by the combination, in any order.
func (b *Builds) Get(representative Combination) (*Build, bool) {
	build, ok := b.byKey[representative.sorted().Key()]
	return build, ok
}

// Of returns the build the combination belongs to.
func (b *Builds) Of(c Combination) (*Build, bool) {
	build, ok := b.byMember[c.sorted().Key()]
	return build, ok
}

// Map returns the members of every build keyed by the key of its representative.
func (b *Builds) Map() map[string][]Combination {
	m := make(map[string][]Combination, len(b.list))
	for _, build := range b.list {
		m[build.Representative.Key()] = build.Members
	}
	return m
}
