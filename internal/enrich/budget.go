package enrich

import "sync"

// Budget caps API calls per pipeline run. It is owned by the client and
// reset at the start of each run; there is no package-level counter.
type Budget struct {
	mu   sync.Mutex
	max  int
	used int
}

func NewBudget(maxCalls int) *Budget {
	return &Budget{max: maxCalls}
}

// Reset zeroes the counter for a new run.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}

// TryConsume takes one call from the budget, reporting false when spent.
func (b *Budget) TryConsume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

func (b *Budget) Consumed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max < b.used {
		return 0
	}
	return b.max - b.used
}
