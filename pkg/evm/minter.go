package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

// mintTokens(address recipient, uint256 amount, bytes32 sourceTxHash) on the
// destination bridge contract.
const mintFunctionSignature = "mintTokens(address,uint256,bytes32)"

const defaultMintGasLimit = 200_000

var mintSelector = crypto.Keccak256([]byte(mintFunctionSignature))[:4]

// destNode is the destination chain surface the minter uses. Satisfied by
// ethclient.Client.
type destNode interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Close()
}

// Minter submits mintTokens transactions on the destination chain. In dry
// run mode it builds and signs the transaction but never broadcasts it,
// which is useful against production contracts.
type Minter struct {
	log      *zap.SugaredLogger
	eth      destNode
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	gasLimit uint64
	dryRun   bool
}

var _ relay.Executor = (*Minter)(nil)

// NewMinter dials the destination chain and derives the submitting account
// from the given hex-encoded private key.
func NewMinter(
	ctx context.Context,
	log *zap.SugaredLogger,
	rpcURL string,
	contract common.Address,
	privateKeyHex string,
	dryRun bool,
) (*Minter, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to read destination chain id: %w", err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	log.Infow("minter initialized",
		"account", from.Hex(), "contract", contract.Hex(),
		"chainID", chainID.String(), "dryRun", dryRun)

	return &Minter{
		log:      log,
		eth:      eth,
		contract: contract,
		key:      key,
		from:     from,
		chainID:  chainID,
		gasLimit: defaultMintGasLimit,
		dryRun:   dryRun,
	}, nil
}

// Close releases the destination chain connection.
func (m *Minter) Close() {
	m.eth.Close()
}

// MintCalldata ABI-encodes the mintTokens call for the given event fields.
func MintCalldata(recipient common.Address, amount *big.Int, sourceTxHash common.Hash) []byte {
	data := make([]byte, 0, 4+3*32)
	data = append(data, mintSelector...)
	data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	data = append(data, sourceTxHash.Bytes()...)
	return data
}

// Submit builds, signs and broadcasts the mint transaction for one lock
// event and returns its hash. In dry run mode the signed transaction is
// logged instead of sent.
func (m *Minter) Submit(ctx context.Context, ev relay.Event) (common.Hash, error) {
	nonce, err := m.eth.PendingNonceAt(ctx, m.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := m.eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &m.contract,
		Gas:      m.gasLimit,
		GasPrice: gasPrice,
		Data:     MintCalldata(ev.Recipient, ev.Amount, ev.SourceTxHash),
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(m.chainID), m.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign mint transaction: %w", err)
	}

	if m.dryRun {
		m.log.Infow("dry run: prepared mint transaction",
			"to", m.contract.Hex(),
			"from", m.from.Hex(),
			"nonce", nonce,
			"hash", signed.Hash().Hex(),
			"sourceTx", ev.SourceTxHash.Hex(),
		)
		return signed.Hash(), nil
	}

	if err := m.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send mint transaction: %w", err)
	}

	m.log.Infow("submitted mint transaction",
		"hash", signed.Hash().Hex(), "sourceTx", ev.SourceTxHash.Hex())
	return signed.Hash(), nil
}
