package checkpoint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func TestCheckpoint_Empty(t *testing.T) {
	t.Parallel()
	cp := New()
	require.Nil(t, cp.LastScanned())
	require.Zero(t, cp.RelayedCount())
	require.False(t, cp.IsRelayed("0xabc"))
}

func TestCheckpoint_SetLastScannedIsMonotonic(t *testing.T) {
	t.Parallel()
	cp := New()

	cp.SetLastScanned(700)
	require.Equal(t, uint64(700), *cp.LastScanned())

	// Lower heights never rewind the checkpoint.
	cp.SetLastScanned(600)
	require.Equal(t, uint64(700), *cp.LastScanned())

	cp.SetLastScanned(700)
	require.Equal(t, uint64(700), *cp.LastScanned())

	cp.SetLastScanned(800)
	require.Equal(t, uint64(800), *cp.LastScanned())
}

func TestCheckpoint_MarkAndQueryRelayed(t *testing.T) {
	t.Parallel()
	cp := New()
	cp.MarkRelayed("0xbbb")
	cp.MarkRelayed("0xaaa")
	cp.MarkRelayed("0xbbb")

	require.True(t, cp.IsRelayed("0xaaa"))
	require.True(t, cp.IsRelayed("0xbbb"))
	require.False(t, cp.IsRelayed("0xccc"))
	require.Equal(t, 2, cp.RelayedCount())
	require.Equal(t, []string{"0xaaa", "0xbbb"}, cp.RelayedIDs())
}

func TestCheckpoint_JSONRoundTrip(t *testing.T) {
	t.Parallel()
	cp := New()
	cp.SetLastScanned(1234)
	cp.MarkRelayed("0xdef")
	cp.MarkRelayed("0xabc")

	data, err := json.Marshal(cp)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"last_scanned_height":1234,"relayed_tx_ids":["0xabc","0xdef"]}`,
		string(data))

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))
	require.Equal(t, uint64(1234), *restored.LastScanned())
	require.True(t, restored.IsRelayed("0xabc"))
	require.True(t, restored.IsRelayed("0xdef"))
	require.Equal(t, 2, restored.RelayedCount())
}

func TestCheckpoint_JSONNullHeight(t *testing.T) {
	t.Parallel()
	cp := New()
	data, err := json.Marshal(cp)
	require.NoError(t, err)
	require.JSONEq(t, `{"last_scanned_height":null,"relayed_tx_ids":[]}`, string(data))

	restored := New()
	require.NoError(t, json.Unmarshal(data, restored))
	require.Nil(t, restored.LastScanned())
	require.Zero(t, restored.RelayedCount())
}

func TestFromDocument(t *testing.T) {
	t.Parallel()
	cp := FromDocument(uint64Ptr(42), []string{"0x1", "0x2"})
	require.Equal(t, uint64(42), *cp.LastScanned())
	require.True(t, cp.IsRelayed("0x1"))
	require.True(t, cp.IsRelayed("0x2"))

	empty := FromDocument(nil, nil)
	require.Nil(t, empty.LastScanned())
	require.Zero(t, empty.RelayedCount())
}

func TestCheckpoint_LastScannedReturnsCopy(t *testing.T) {
	t.Parallel()
	cp := New()
	cp.SetLastScanned(100)

	h := cp.LastScanned()
	*h = 5
	require.Equal(t, uint64(100), *cp.LastScanned())
}
