package storage

import (
	"context"

	"tierquote/internal/model"
)

// SnapshotSink receives batches of pool snapshots.
type SnapshotSink interface {
	PutSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error
}
