// Package evm adapts go-ethereum clients to the relay pipeline: a log
// reader for the source chain and a mint executor for the destination
// chain.
package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

// Client reads head height and lock events from the source chain. The
// connection is re-established lazily after a connectivity failure.
type Client struct {
	log      *zap.SugaredLogger
	rpcURL   string
	contract common.Address
	timeout  time.Duration

	eth *ethclient.Client // nil until (re)connected
}

var _ relay.LogReader = (*Client)(nil)

// NewClient dials the source chain and verifies the connection by reading
// its chain id.
func NewClient(
	ctx context.Context,
	log *zap.SugaredLogger,
	rpcURL string,
	contract common.Address,
	timeout time.Duration,
) (*Client, error) {
	c := &Client{
		log:      log,
		rpcURL:   rpcURL,
		contract: contract,
		timeout:  timeout,
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	eth, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.rpcURL, err)
	}

	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	chainID, err := eth.ChainID(tctx)
	if err != nil {
		eth.Close()
		return fmt.Errorf("failed to verify connection to %s: %w", c.rpcURL, err)
	}

	c.eth = eth
	c.log.Infow("connected to source chain", "rpcURL", c.rpcURL, "chainID", chainID.String())
	return nil
}

// ensure returns a live connection, redialing if the previous one was
// dropped after a failure.
func (c *Client) ensure(ctx context.Context) (*ethclient.Client, error) {
	if c.eth != nil {
		return c.eth, nil
	}
	c.log.Warnw("source chain connection lost, reconnecting", "rpcURL", c.rpcURL)
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c.eth, nil
}

func (c *Client) drop() {
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

// HeadHeight returns the current head height of the source chain.
func (c *Client) HeadHeight(ctx context.Context) (uint64, error) {
	eth, err := c.ensure(ctx)
	if err != nil {
		return 0, err
	}

	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	head, err := eth.BlockNumber(tctx)
	if err != nil {
		c.drop()
		return 0, fmt.Errorf("failed to read head height: %w", err)
	}
	return head, nil
}

// FetchLockEvents filters the bridge contract for TokensLocked logs in the
// closed range [from, to] and decodes them. Logs flagged as removed by a
// reorg and logs that fail to decode are skipped.
func (c *Client) FetchLockEvents(ctx context.Context, from, to uint64) ([]relay.Event, error) {
	eth, err := c.ensure(ctx)
	if err != nil {
		return nil, classifyScanError(err)
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{{lockEventTopic}},
	}

	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	logs, err := eth.FilterLogs(tctx, query)
	if err != nil {
		if isConnectivityError(err) {
			c.drop()
		}
		return nil, classifyScanError(err)
	}

	events := make([]relay.Event, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		ev, err := ParseLockEvent(lg)
		if err != nil {
			c.log.Warnw("skipping undecodable log",
				"block", lg.BlockNumber, "tx", lg.TxHash.Hex(), "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// classifyScanError wraps transport failures into the sentinels the scanner
// matches on. Node-behind conditions surface as "not found" style messages
// from eth_getLogs.
func classifyScanError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", relay.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", relay.ErrTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "block not found") ||
		strings.Contains(msg, "header not found") ||
		strings.Contains(msg, "unknown block") {
		return fmt.Errorf("%w: %v", relay.ErrRangeUnavailable, err)
	}
	return err
}

func isConnectivityError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}
