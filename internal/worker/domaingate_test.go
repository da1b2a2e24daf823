package worker

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestDomainGate_Limit(t *testing.T) {
	gate := NewDomainGate(2)

	if !gate.Acquire("example.com") || !gate.Acquire("EXAMPLE.com") {
		t.Fatal("first two attempts should pass")
	}
	if gate.Acquire("example.com") {
		t.Error("third attempt should be refused")
	}
	if !gate.Acquire("other.com") {
		t.Error("other host should pass")
	}
	if gate.Acquire("Example.COM") {
		t.Error("refusal should persist for the rest of the run")
	}
}

func TestDomainGate_Concurrent(t *testing.T) {
	gate := NewDomainGate(3)
	var admitted int32
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.Acquire("busy.example") {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 3 {
		t.Errorf("expected exactly 3 admitted attempts, got %d", admitted)
	}
}

func TestDomainGate_DefaultLimit(t *testing.T) {
	gate := NewDomainGate(0)
	if !gate.Acquire("a") || gate.Acquire("a") {
		t.Error("expected limit of 1 for non-positive input")
	}
}
