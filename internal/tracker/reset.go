package tracker

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

type ReloadFunc func(ctx context.Context) error

// Resetter wipes the tracker data and the stored user id, then reloads.
// There is no confirmation, backup or rollback.
type Resetter struct {
	store  *Store
	reload ReloadFunc
}

func NewResetter(store *Store, reload ReloadFunc) *Resetter {
	return &Resetter{
		store:  store,
		reload: reload,
	}
}

// Reset empties the store even when the reload fails afterwards; a failed
// removal leaves everything as it was and skips the reload.
func (r *Resetter) Reset(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.resetter.reset")
	defer tracing.EndSpanWithErrCheck(span, &err)

	r.store.bootstrapMutex.Lock()
	err = r.store.Wipe(ctx, storage.KeyUserID)
	r.store.bootstrapMutex.Unlock()
	if err != nil {
		return err
	}

	if r.reload == nil {
		return nil
	}
	if err := r.reload(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}
