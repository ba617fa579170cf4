package conditions

// DefaultMaxConditions is the default limit of distinct conditions,
// 2^16 combinations.
const DefaultMaxConditions = 16

// Options are the options of NewPlan.
type Options struct {
	MaxConditions int
}

// Option configures NewPlan.
type Option func(*Options)

// WithMaxConditions sets the limit of distinct conditions, values <= 0 keep
// the default.
func WithMaxConditions(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxConditions = n
		}
	}
}

// Plan is the builds a package needs for its imports field.
type Plan struct {
	Imports    *Imports
	Conditions []string
	Builds     *Builds
}

// NewPlan validates the raw imports field and computes its builds.
func NewPlan(raw any, opts ...Option) (*Plan, error) {
	options := Options{MaxConditions: DefaultMaxConditions}
	for _, opt := range opts {
		opt(&options)
	}

	imports, err := ParseImports(raw)
	if err != nil {
		return nil, err
	}
	conditions, err := Conditions(imports)
	if err != nil {
		return nil, err
	}
	if len(conditions) > options.MaxConditions {
		return nil, &TooManyConditionsError{Count: len(conditions), Max: options.MaxConditions}
	}
	builds, err := ComputeBuilds(conditions, imports)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Imports:    imports,
		Conditions: conditions,
		Builds:     builds,
	}, nil
}

// ExportsFor synthesizes the exports tree of the plan.
func ExportsFor[L comparable](p *Plan, toLeaf func(Combination) L) (*ExportsTree[L], error) {
	return Synthesize(p.Builds, toLeaf)
}
