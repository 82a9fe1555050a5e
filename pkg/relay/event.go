package relay

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event is a single TokensLocked occurrence observed on the source chain.
// Events are immutable once read; only the source transaction hash survives
// past submission, as the dedup identifier in the checkpoint.
type Event struct {
	SourceTxHash common.Hash
	BlockHeight  uint64
	Sender       common.Address
	Recipient    common.Address
	Amount       *big.Int
	DestChainID  *big.Int
}

// ID returns the dedup identifier for the event. It is derived from the
// source transaction hash so it stays stable across re-scans of the same
// block range.
func (e Event) ID() string {
	return e.SourceTxHash.Hex()
}
