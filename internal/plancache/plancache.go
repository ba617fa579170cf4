// Package plancache memoizes build plans by the content of the imports field,
// so watchers can re-plan on every package.json change without recomputing
// plans for imports that didn't change.
package plancache

import (
	"github.com/cespare/xxhash/v2"
	"github.com/esm-dev/preconstruct/internal/conditions"
	"github.com/esm-dev/preconstruct/internal/npm"
	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	imports string
	plan    *conditions.Plan
	err     error
}

// Cache is a LRU cache of plans, safe for concurrent use.
type Cache struct {
	lru  *lru.Cache[uint64, *entry]
	opts []conditions.Option
}

// New creates a cache holding up to size plans computed with the given options.
func New(size int, opts ...conditions.Option) (*Cache, error) {
	l, err := lru.New[uint64, *entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, opts: opts}, nil
}

// Plan returns the plan of the imports field, computing it on a miss.
// Planning errors are cached as well since planning is deterministic.
func (c *Cache) Plan(imports npm.JSONObject) (plan *conditions.Plan, hit bool, err error) {
	data, err := imports.MarshalJSON()
	if err != nil {
		return nil, false, err
	}
	key := xxhash.Sum64(data)
	if e, ok := c.lru.Get(key); ok && e.imports == string(data) {
		return e.plan, true, e.err
	}
	plan, err = conditions.NewPlan(imports, c.opts...)
	c.lru.Add(key, &entry{imports: string(data), plan: plan, err: err})
	return plan, false, err
}

// Len returns the number of cached plans.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge removes all cached plans.
func (c *Cache) Purge() {
	c.lru.Purge()
}
