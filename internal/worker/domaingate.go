package worker

import (
	"strings"
	"sync"
)

// DomainGate caps the number of attempts per hostname for one run. Once a
// host reaches the limit, further attempts are refused for the rest of the run.
type DomainGate struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
}

// NewDomainGate creates a gate allowing limit attempts per host
func NewDomainGate(limit int) *DomainGate {
	if limit <= 0 {
		limit = 1
	}
	return &DomainGate{
		counts: make(map[string]int),
		limit:  limit,
	}
}

// Acquire atomically checks and increments the host's attempt count
func (g *DomainGate) Acquire(host string) bool {
	host = strings.ToLower(host)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.counts[host] >= g.limit {
		return false
	}
	g.counts[host]++
	return true
}
