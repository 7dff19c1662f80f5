package pins

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/linekeeper/LineKeeper/model"
)

// Lock is the claim token for a single line.
// At most one live Lock exists per line within a registry.
type Lock struct {
	line model.LineID
}

// Line returns the line this lock claims.
func (l *Lock) Line() model.LineID {
	return l.line
}

// Registry guarantees single ownership of a line within the process.
// Claims do not survive a process restart; lines left exported by a
// crashed process are not protected against a later instance.
type Registry interface {
	// Acquire claims the given line.
	// Fails with AlreadyClaimedError when the line is held.
	Acquire(line model.LineID) (*Lock, error)
	// Release removes the claim held by the given lock.
	// Releasing an already released lock has no effect.
	Release(lock *Lock)
}

// NewRegistry creates an empty line registry.
func NewRegistry() Registry {
	return &registry{
		claims: make(map[model.LineID]struct{}),
	}
}

type registry struct {
	mutex  sync.Mutex
	claims map[model.LineID]struct{}
}

// Acquire claims the given line.
func (r *registry) Acquire(line model.LineID) (*Lock, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, found := r.claims[line]; found {
		return nil, errors.Wrapf(AlreadyClaimedError, "line %d", line)
	}
	r.claims[line] = struct{}{}
	return &Lock{line: line}, nil
}

// Release removes the claim held by the given lock.
func (r *registry) Release(lock *Lock) {
	if lock == nil {
		return
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.claims, lock.line)
}
