package evm

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

type mockDestNode struct {
	mock.Mock
}

func (m *mockDestNode) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockDestNode) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockDestNode) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockDestNode) Close() {
	m.Called()
}

func newTestMinter(t *testing.T, node destNode, dryRun bool) *Minter {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &Minter{
		log:      zap.NewNop().Sugar(),
		eth:      node,
		contract: common.HexToAddress("0x4444444444444444444444444444444444444444"),
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  big.NewInt(137),
		gasLimit: defaultMintGasLimit,
		dryRun:   dryRun,
	}
}

func lockEvent() relay.Event {
	return relay.Event{
		SourceTxHash: common.HexToHash("0xdeadbeef"),
		BlockHeight:  1088,
		Sender:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Recipient:    common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Amount:       big.NewInt(1_500_000),
		DestChainID:  big.NewInt(137),
	}
}

func TestMinter_SubmitSendsSignedTransaction(t *testing.T) {
	t.Parallel()
	node := &mockDestNode{}
	m := newTestMinter(t, node, false)

	node.On("PendingNonceAt", mock.Anything, m.from).Return(uint64(7), nil).Once()
	node.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(2_000_000_000), nil).Once()

	var sent *types.Transaction
	node.
		On("SendTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*types.Transaction)
		}).
		Return(nil).
		Once()

	ev := lockEvent()
	hash, err := m.Submit(t.Context(), ev)
	require.NoError(t, err)

	require.NotNil(t, sent)
	require.Equal(t, sent.Hash(), hash)
	require.Equal(t, uint64(7), sent.Nonce())
	require.Equal(t, m.contract, *sent.To())
	require.Equal(t, uint64(defaultMintGasLimit), sent.Gas())
	require.Equal(t, MintCalldata(ev.Recipient, ev.Amount, ev.SourceTxHash), sent.Data())

	// The transaction carries a real signature for the configured chain.
	sender, err := types.Sender(types.LatestSignerForChainID(m.chainID), sent)
	require.NoError(t, err)
	require.Equal(t, m.from, sender)

	node.AssertExpectations(t)
}

func TestMinter_DryRunSignsWithoutSending(t *testing.T) {
	t.Parallel()
	node := &mockDestNode{}
	m := newTestMinter(t, node, true)

	node.On("PendingNonceAt", mock.Anything, m.from).Return(uint64(7), nil).Once()
	node.On("SuggestGasPrice", mock.Anything).Return(big.NewInt(2_000_000_000), nil).Once()

	hash, err := m.Submit(t.Context(), lockEvent())
	require.NoError(t, err)
	require.NotEqual(t, common.Hash{}, hash)

	node.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	node.AssertExpectations(t)
}

func TestMintCalldata(t *testing.T) {
	t.Parallel()
	recipient := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := big.NewInt(1_500_000)
	sourceTx := common.HexToHash("0xdeadbeef")

	data := MintCalldata(recipient, amount, sourceTx)
	require.Len(t, data, 4+3*32)

	wantSelector := crypto.Keccak256([]byte("mintTokens(address,uint256,bytes32)"))[:4]
	require.Equal(t, wantSelector, data[:4])

	require.Equal(t, common.LeftPadBytes(recipient.Bytes(), 32), data[4:36])
	require.Equal(t, common.LeftPadBytes(amount.Bytes(), 32), data[36:68])
	require.Equal(t, sourceTx.Bytes(), data[68:100])
}

func TestMintCalldata_ZeroAmount(t *testing.T) {
	t.Parallel()
	data := MintCalldata(common.Address{}, big.NewInt(0), common.Hash{})
	require.Len(t, data, 4+3*32)
	require.Equal(t, make([]byte, 96), data[4:])
}
