package snapshotv1

import "context"

// Store publishes and reads order-book snapshots.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=snapshotv1_mock
type Store interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Load(ctx context.Context, pair string) (*Snapshot, error)
}
