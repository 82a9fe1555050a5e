package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

// TokensLocked(address indexed sender, address recipient, uint256 amount,
// uint256 indexed destinationChainId), as emitted by the source bridge
// contract. The descriptor is resolved once at package init; there is no
// dynamic ABI lookup.
const lockEventSignature = "TokensLocked(address,address,uint256,uint256)"

var lockEventTopic = crypto.Keccak256Hash([]byte(lockEventSignature))

// LockEventTopic returns the topic hash used to filter TokensLocked logs.
func LockEventTopic() common.Hash {
	return lockEventTopic
}

// ParseLockEvent decodes a raw log into a relay.Event. Topics carry the
// indexed sender and destination chain id; the data section packs the
// recipient and the amount as two 32-byte words.
func ParseLockEvent(lg types.Log) (relay.Event, error) {
	if len(lg.Topics) != 3 {
		return relay.Event{}, fmt.Errorf("unexpected topic count %d for lock event", len(lg.Topics))
	}
	if lg.Topics[0] != lockEventTopic {
		return relay.Event{}, fmt.Errorf("unexpected event topic %s", lg.Topics[0].Hex())
	}
	if len(lg.Data) != 64 {
		return relay.Event{}, fmt.Errorf("unexpected data length %d for lock event", len(lg.Data))
	}

	return relay.Event{
		SourceTxHash: lg.TxHash,
		BlockHeight:  lg.BlockNumber,
		Sender:       common.BytesToAddress(lg.Topics[1].Bytes()),
		Recipient:    common.BytesToAddress(lg.Data[:32]),
		Amount:       new(big.Int).SetBytes(lg.Data[32:64]),
		DestChainID:  new(big.Int).SetBytes(lg.Topics[2].Bytes()),
	}, nil
}
