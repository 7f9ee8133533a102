// If you are AI: This file keeps integer mirrors of counters for the JSON API.

package metrics

import "sync/atomic"

// counterValue mirrors a Prometheus counter as an integer readable without scraping.
type counterValue struct {
	v atomic.Uint64
}

// add increments the value.
func (c *counterValue) add(n uint64) {
	c.v.Add(n)
}

// load returns the value.
func (c *counterValue) load() uint64 {
	return c.v.Load()
}
