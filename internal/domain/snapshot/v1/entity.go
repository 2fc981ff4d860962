package snapshotv1

import exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"

// Snapshot is the published order-book view of one pair.
type Snapshot struct {
	Pair string                   `json:"pair"`
	Book exchangev1.OrderBookView `json:"book"`
}

// Notification is sent on the change channel after a snapshot is stored.
type Notification struct {
	Pair           string `json:"pair"`
	SequenceNumber uint64 `json:"sequenceNumber"`
}
