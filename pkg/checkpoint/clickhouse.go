package checkpoint

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/bridgeworks/bridge-relayer/pkg/clickhouse"
)

//go:embed queries/create-table.sql
var createTableQuery string

//go:embed queries/write-checkpoint.sql
var writeCheckpointQuery string

//go:embed queries/read-checkpoint.sql
var readCheckpointQuery string

//go:embed queries/delete-checkpoint.sql
var deleteCheckpointQuery string

// ClickHouseStore persists the checkpoint in a ReplacingMergeTree table, one
// row per relayer instance keyed by relayerID. Every save inserts a full new
// row; the engine keeps the one with the highest timestamp.
type ClickHouseStore struct {
	client    clickhouse.Client
	database  string
	tableName string
	relayerID string
}

var _ Store = (*ClickHouseStore)(nil)

// NewClickHouseStore creates the store and ensures the checkpoints table
// exists.
func NewClickHouseStore(
	client clickhouse.Client,
	database, tableName, relayerID string,
) (*ClickHouseStore, error) {
	s := &ClickHouseStore{
		client:    client,
		database:  database,
		tableName: tableName,
		relayerID: relayerID,
	}
	if err := s.initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints table: %w", err)
	}
	return s, nil
}

func (s *ClickHouseStore) initialize(ctx context.Context) error {
	query := fmt.Sprintf(createTableQuery, s.database, s.tableName)
	if err := s.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoints table: %w", err)
	}
	return nil
}

// Load retrieves the latest checkpoint row for this relayer. A missing row
// yields an empty checkpoint.
func (s *ClickHouseStore) Load(ctx context.Context) (*Checkpoint, error) {
	var (
		lastScanned *uint64
		relayedIDs  []string
	)
	query := fmt.Sprintf(readCheckpointQuery, s.database, s.tableName)
	err := s.client.Conn().
		QueryRow(ctx, query, s.relayerID).
		Scan(&lastScanned, &relayedIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return FromDocument(lastScanned, relayedIDs), nil
}

// Save inserts a new checkpoint row with the current Unix timestamp.
func (s *ClickHouseStore) Save(ctx context.Context, cp *Checkpoint) error {
	query := fmt.Sprintf(writeCheckpointQuery, s.database, s.tableName)
	err := s.client.Conn().
		Exec(ctx, query, s.relayerID, cp.LastScanned(), cp.RelayedIDs(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// Reset deletes all checkpoint rows for this relayer.
func (s *ClickHouseStore) Reset(ctx context.Context) error {
	query := fmt.Sprintf(deleteCheckpointQuery, s.database, s.tableName)
	if err := s.client.Conn().Exec(ctx, query, s.relayerID); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
