package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FactBatch est un lot ordonné de faits, identifié par son run et son rang
type FactBatch struct {
	RunID uuid.UUID
	Seq   int
	Rows  []FactSales
}

// Bounds retourne le premier et le dernier id du lot
func (b FactBatch) Bounds() (FactID, FactID) {
	if len(b.Rows) == 0 {
		return 0, 0
	}
	return b.Rows[0].ID, b.Rows[len(b.Rows)-1].ID
}

// BatchRecord trace un lot persisté (table load_batch)
type BatchRecord struct {
	RunID       uuid.UUID
	Seq         int
	RowCount    int
	FirstFactID FactID
	LastFactID  FactID
	LoadedAt    time.Time
}

// NewBatchRecord construit la trace d'un lot
func NewBatchRecord(b FactBatch, loadedAt time.Time) BatchRecord {
	first, last := b.Bounds()
	return BatchRecord{
		RunID:       b.RunID,
		Seq:         b.Seq,
		RowCount:    len(b.Rows),
		FirstFactID: first,
		LastFactID:  last,
		LoadedAt:    loadedAt,
	}
}

// FactSink reçoit les lots de faits dans l'ordre de génération
// (export CSV, Parquet, ...)
type FactSink interface {
	WriteBatch(ctx context.Context, batch FactBatch) error
	Close() error
}

// BatchError signale l'échec de persistance d'un lot.
// Les lots précédents restent persistés.
type BatchError struct {
	RunID uuid.UUID
	Seq   int
	Rows  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d of run %s (%d rows) failed: %v", e.Seq, e.RunID, e.Rows, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
