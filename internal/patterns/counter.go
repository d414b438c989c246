package patterns

import (
	"sort"

	"github.com/tinytelemetry/logscope/internal/model"
)

// rankedCounter is a frequency table that remembers first-seen order so
// equal counts always rank the same way for the same input.
type rankedCounter struct {
	counts map[string]int
	order  []string
}

func newRankedCounter() *rankedCounter {
	return &rankedCounter{counts: make(map[string]int)}
}

func (c *rankedCounter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns at most n entries, highest count first, ties in first-seen order.
func (c *rankedCounter) top(n int) []model.RankedCount {
	ranked := make([]model.RankedCount, 0, len(c.order))
	for _, key := range c.order {
		ranked = append(ranked, model.RankedCount{Value: key, Count: c.counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
