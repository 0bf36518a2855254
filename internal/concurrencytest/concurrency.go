// Package concurrencytest provides small helpers for exercising concurrent
// code paths from tests, namely the snapshot scheduler's row-level leasing.
package concurrencytest

import (
	"sync"
	"time"
)

// Tester records operations performed by concurrently running goroutines so
// a test can assert on the full timeline after the fact.
type Tester struct {
	mu         sync.Mutex
	operations []Operation
}

// Operation is a single recorded event from one goroutine.
type Operation struct {
	Name      string
	Timestamp time.Time
	WorkerID  int
	Success   bool
	Error     error
}

// New creates a Tester.
func New() *Tester {
	return &Tester{}
}

// RecordOperation appends an operation to the timeline.
func (t *Tester) RecordOperation(name string, workerID int, success bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = append(t.operations, Operation{
		Name:      name,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Success:   success,
		Error:     err,
	})
}

// Operations returns a copy of the recorded timeline.
func (t *Tester) Operations() []Operation {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := make([]Operation, len(t.operations))
	copy(ops, t.operations)
	return ops
}

// ExecuteConcurrent runs fn on n goroutines simultaneously, waits for all of
// them to return, and reports each call's error alongside a recorded
// operation entry for the given name.
func (t *Tester) ExecuteConcurrent(name string, n int, fn func(workerID int) error) []error {
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			err := fn(workerID)
			errs[workerID] = err
			t.RecordOperation(name, workerID, err == nil, err)
		}(i)
	}

	wg.Wait()
	return errs
}
