package requisition

import (
	"sync"
	"testing"
)

func TestLockRequisitionMutualExclusion(t *testing.T) {
	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := lockRequisition(42)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("kilit altında %d artış bekleniyordu, %d geldi", workers, counter)
	}
}

func TestLockRequisitionEvictsWhenIdle(t *testing.T) {
	ids := []uint{1, 2, 3, 100, 2000}
	for _, id := range ids {
		unlock := lockRequisition(id)
		unlock()
	}

	reqLocksMu.Lock()
	defer reqLocksMu.Unlock()
	if len(reqLocks) != 0 {
		t.Errorf("boşta kalan kilitler haritadan düşmeli, %d kayıt kaldı", len(reqLocks))
	}
}
