// Package checkpoint holds the durable relay progress: the last scanned
// block height and the set of already relayed source transaction hashes.
// The checkpoint is mutated only by the relay loop; running multiple relayer
// instances against the same store requires external single-writer locking.
package checkpoint

import (
	"encoding/json"
	"sort"
)

// Checkpoint is the in-memory relay progress. The relayed set grows without
// bound over the lifetime of a deployment; it is never pruned here.
type Checkpoint struct {
	lastScanned *uint64
	relayed     map[string]struct{}
}

// New returns an empty checkpoint: no height scanned, nothing relayed.
func New() *Checkpoint {
	return &Checkpoint{relayed: make(map[string]struct{})}
}

// LastScanned returns the last scanned height, or nil if no range has ever
// been checkpointed.
func (c *Checkpoint) LastScanned() *uint64 {
	if c.lastScanned == nil {
		return nil
	}
	h := *c.lastScanned
	return &h
}

// SetLastScanned records the upper bound of a completed batch. The height is
// monotonically non-decreasing; lower values are ignored.
func (c *Checkpoint) SetLastScanned(h uint64) {
	if c.lastScanned != nil && h < *c.lastScanned {
		return
	}
	c.lastScanned = &h
}

// IsRelayed reports whether the event identifier has already been relayed.
func (c *Checkpoint) IsRelayed(id string) bool {
	_, ok := c.relayed[id]
	return ok
}

// MarkRelayed records an event identifier as relayed.
func (c *Checkpoint) MarkRelayed(id string) {
	c.relayed[id] = struct{}{}
}

// RelayedCount returns the number of relayed event identifiers.
func (c *Checkpoint) RelayedCount() int {
	return len(c.relayed)
}

// RelayedIDs returns the relayed identifiers in lexical order.
func (c *Checkpoint) RelayedIDs() []string {
	ids := make([]string, 0, len(c.relayed))
	for id := range c.relayed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// document is the persisted layout: a single atomic record.
type document struct {
	LastScannedHeight *uint64  `json:"last_scanned_height"`
	RelayedTxIDs      []string `json:"relayed_tx_ids"`
}

func (c *Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		LastScannedHeight: c.lastScanned,
		RelayedTxIDs:      c.RelayedIDs(),
	})
}

func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	c.lastScanned = doc.LastScannedHeight
	c.relayed = make(map[string]struct{}, len(doc.RelayedTxIDs))
	for _, id := range doc.RelayedTxIDs {
		c.relayed[id] = struct{}{}
	}
	return nil
}

// FromDocument rebuilds a checkpoint from its persisted fields.
func FromDocument(lastScanned *uint64, relayedIDs []string) *Checkpoint {
	c := New()
	if lastScanned != nil {
		h := *lastScanned
		c.lastScanned = &h
	}
	for _, id := range relayedIDs {
		c.relayed[id] = struct{}{}
	}
	return c
}
