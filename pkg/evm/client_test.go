package evm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bridgeworks/bridge-relayer/pkg/relay"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyScanError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "deadline exceeded",
			err:  fmt.Errorf("rpc call: %w", context.DeadlineExceeded),
			want: relay.ErrTimeout,
		},
		{
			name: "network timeout",
			err:  timeoutErr{},
			want: relay.ErrTimeout,
		},
		{
			name: "node behind, block not found",
			err:  errors.New("block not found"),
			want: relay.ErrRangeUnavailable,
		},
		{
			name: "node behind, header not found",
			err:  errors.New("header not found"),
			want: relay.ErrRangeUnavailable,
		},
		{
			name: "node behind, unknown block",
			err:  errors.New("Unknown block number"),
			want: relay.ErrRangeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, classifyScanError(tt.err), tt.want)
		})
	}
}

func TestClassifyScanError_UnknownPassesThrough(t *testing.T) {
	t.Parallel()
	err := errors.New("query returned more than 10000 results")
	got := classifyScanError(err)
	require.NotErrorIs(t, got, relay.ErrTimeout)
	require.NotErrorIs(t, got, relay.ErrRangeUnavailable)
	require.Equal(t, err, got)
}
