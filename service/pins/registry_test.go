package pins

import "testing"

func TestRegistryAcquireConflict(t *testing.T) {
	registry := NewRegistry()
	lock, err := registry.Acquire(17)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if lock.Line() != 17 {
		t.Errorf("Lock line = %d, expected 17", lock.Line())
	}
	if _, err := registry.Acquire(17); !IsAlreadyClaimed(err) {
		t.Errorf("Expected AlreadyClaimedError, got %v", err)
	}
	// Another line is not affected.
	other, err := registry.Acquire(18)
	if err != nil {
		t.Fatalf("Acquire(18) failed: %v", err)
	}
	registry.Release(other)
}

func TestRegistryReleaseAllowsReacquire(t *testing.T) {
	registry := NewRegistry()
	lock, err := registry.Acquire(4)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	registry.Release(lock)
	if _, err := registry.Acquire(4); err != nil {
		t.Errorf("Acquire after release failed: %v", err)
	}
}

func TestRegistryReleaseNil(t *testing.T) {
	registry := NewRegistry()
	registry.Release(nil)
}
