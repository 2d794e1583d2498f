package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes work on one wizard session across replicas.
// session.Manager takes the lock around every load-modify-save of a session,
// on top of its in-process mutex; redis.Locker is the shared implementation.
type DistributedLocker interface {
	// Lock blocks until the session key is held or ctx is done. The lock
	// expires after ttl if the holder never releases it. Callers must invoke
	// the returned UnlockFunc, which only releases a lock it still owns.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
