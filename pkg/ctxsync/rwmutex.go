package ctxsync

import "context"

// RWMutex is a reader/writer mutual exclusion lock whose acquisitions can be
// abandoned through a context. Readers take precedence: while at least one
// reader holds the lock, new readers enter without waiting for writers.
type RWMutex struct {
	state   *Mutex
	write   *Mutex
	readers int
}

// NewRWMutex creates a new instance of RWMutex.
func NewRWMutex() *RWMutex {
	return &RWMutex{
		state: NewMutex(),
		write: NewMutex(),
	}
}

// RLock locks rw for reading with a context.Background().
func (rw *RWMutex) RLock() {
	_ = rw.RLockWithContext(context.Background())
}

// RLockWithContext locks rw for reading. The first reader acquires the write
// lock on behalf of every reader.
func (rw *RWMutex) RLockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rw.state.LockWithContext(ctx); err != nil {
		return err
	}
	defer rw.state.Unlock()
	if rw.readers == 0 {
		if err := rw.write.LockWithContext(ctx); err != nil {
			return err
		}
	}
	rw.readers++
	return nil
}

// RUnlock undoes a single RLock call. The last reader releases the write
// lock.
func (rw *RWMutex) RUnlock() {
	rw.state.Lock()
	defer rw.state.Unlock()
	if rw.readers == 0 {
		panic("ctxsync: runlock of unlocked rwmutex")
	}
	rw.readers--
	if rw.readers == 0 {
		rw.write.Unlock()
	}
}

// Lock locks rw for writing with a context.Background().
func (rw *RWMutex) Lock() {
	_ = rw.LockWithContext(context.Background())
}

// LockWithContext locks rw for writing until Unlock is called or ctx is
// done.
func (rw *RWMutex) LockWithContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return rw.write.LockWithContext(ctx)
}

// Unlock unlocks rw for writing.
func (rw *RWMutex) Unlock() {
	rw.write.Unlock()
}
