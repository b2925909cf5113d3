package state

import "slices"

// Entity is anything with a stable server id.
type Entity interface {
	EntityID() string
}

// MergePolicy decides how a load-more batch joins the existing items.
type MergePolicy int

const (
	// MergeAppend appends the batch as-is.
	MergeAppend MergePolicy = iota
	// MergeDedupe appends only items whose id is not already present.
	MergeDedupe
)

// Collection is one paginated resource. Page is the next page a load-more
// will request. HasMore is recomputed from each batch and cleared on failure.
type Collection[T Entity] struct {
	Items   []T    `json:"items"`
	Page    int    `json:"page"`
	HasMore bool   `json:"hasMore"`
	Loading bool   `json:"loading"`
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`

	gen uint64
}

// NewCollection returns an empty collection ready for its first fetch.
func NewCollection[T Entity]() Collection[T] {
	return Collection[T]{Items: []T{}, Page: 1, HasMore: true}
}

// CanLoadMore reports whether a load-more dispatch is allowed.
func (c Collection[T]) CanLoadMore() bool {
	return !c.Loading && c.HasMore
}

func (c *Collection[T]) begin(gen uint64) {
	c.gen = gen
	c.Loading = true
	c.Status = StatusLoading
	c.Error = ""
}

// fulfill applies a batch fetched by generation gen. Results from a
// superseded generation are dropped and reported as not applied.
func (c *Collection[T]) fulfill(gen uint64, loadMore bool, batch []T, limit int, policy MergePolicy) bool {
	if gen != c.gen {
		return false
	}
	if loadMore {
		c.Items = merge(c.Items, batch, policy)
		c.Page++
	} else {
		c.Items = append(make([]T, 0, len(batch)), batch...)
		c.Page = 2
	}
	c.HasMore = len(batch) >= limit
	c.Loading = false
	c.Status = StatusSucceeded
	c.Error = ""
	return true
}

func (c *Collection[T]) reject(gen uint64, msg string) bool {
	if gen != c.gen {
		return false
	}
	c.HasMore = false
	c.Loading = false
	c.Status = StatusFailed
	c.Error = msg
	return true
}

func (c Collection[T]) clone() Collection[T] {
	c.Items = slices.Clone(c.Items)
	return c
}

func merge[T Entity](items, batch []T, policy MergePolicy) []T {
	out := make([]T, 0, len(items)+len(batch))
	out = append(out, items...)
	if policy == MergeAppend {
		return append(out, batch...)
	}

	seen := make(map[string]struct{}, len(out)+len(batch))
	for _, it := range out {
		if id := it.EntityID(); id != "" {
			seen[id] = struct{}{}
		}
	}
	for _, it := range batch {
		id := it.EntityID()
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}
