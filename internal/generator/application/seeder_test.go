package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	warehouse "salesinsights/internal/warehouse/domain"
)

// fakeWriter enregistre les lots et peut échouer sur un rang donné
type fakeWriter struct {
	mu       sync.Mutex
	prepared bool
	catalog  *warehouse.Catalog
	batches  []warehouse.FactBatch
	failSeq  int
	failErr  error
}

func (w *fakeWriter) Prepare(ctx context.Context, reset bool) error {
	w.prepared = true
	return nil
}

func (w *fakeWriter) InsertDimensions(ctx context.Context, catalog *warehouse.Catalog) error {
	w.catalog = catalog
	return nil
}

func (w *fakeWriter) InsertFacts(ctx context.Context, batch warehouse.FactBatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if batch.Seq == w.failSeq {
		return w.failErr
	}
	w.batches = append(w.batches, batch)
	return nil
}

// recordingSink compte les lignes reçues et sa fermeture
type recordingSink struct {
	rows   int
	closed bool
}

func (s *recordingSink) WriteBatch(ctx context.Context, batch warehouse.FactBatch) error {
	s.rows += len(batch.Rows)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func TestSeeder_Run(t *testing.T) {
	writer := &fakeWriter{}
	sink := &recordingSink{}
	seeder := NewSeeder(writer, zerolog.Nop(), sink)

	var progress []int
	seeder.OnBatch = func(rec warehouse.BatchRecord) { progress = append(progress, rec.Seq) }

	summary, err := seeder.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !writer.prepared || writer.catalog == nil {
		t.Fatal("l'entrepôt n'a pas été préparé")
	}
	if summary.Days != 73 || summary.Customers != 16 || summary.Plants != 8 || summary.Materials != 30 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Batches != len(writer.batches) || summary.Batches != len(progress) {
		t.Errorf("batches = %d, writer %d, progress %d", summary.Batches, len(writer.batches), len(progress))
	}

	var rows int64
	for i, b := range writer.batches {
		if b.Seq != i+1 {
			t.Errorf("lot %d: seq %d", i, b.Seq)
		}
		if b.RunID != summary.RunID {
			t.Errorf("lot %d: run id %s, want %s", i, b.RunID, summary.RunID)
		}
		rows += int64(len(b.Rows))
	}
	if rows != summary.Facts || int64(sink.rows) != summary.Facts {
		t.Errorf("facts = %d, writer %d, sink %d", summary.Facts, rows, sink.rows)
	}
	if !sink.closed {
		t.Error("le sink n'a pas été fermé")
	}
	if summary.DataAsOf.Format("2006-01-02") != "2025-03-14" {
		t.Errorf("DataAsOf = %s", summary.DataAsOf)
	}
}

func TestSeeder_Run_BatchFailure(t *testing.T) {
	cause := errors.New("connection reset")
	writer := &fakeWriter{failSeq: 3, failErr: cause}
	sink := &recordingSink{}
	seeder := NewSeeder(writer, zerolog.Nop(), sink)

	summary, err := seeder.Run(context.Background(), testConfig())
	if summary != nil {
		t.Errorf("summary = %+v, want nil", summary)
	}

	var batchErr *warehouse.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("err = %v, want *BatchError", err)
	}
	if batchErr.Seq != 3 || batchErr.Rows != testConfig().BatchSize {
		t.Errorf("BatchError = %+v", batchErr)
	}
	if !errors.Is(err, cause) {
		t.Error("la cause devrait être accessible via errors.Is")
	}

	// Les lots précédents restent persistés
	if len(writer.batches) != 2 {
		t.Errorf("lots persistés = %d, want 2", len(writer.batches))
	}
	if !sink.closed {
		t.Error("le sink doit être fermé même en cas d'échec")
	}
}

func TestSeeder_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := &fakeWriter{}
	_, err := NewSeeder(writer, zerolog.Nop()).Run(ctx, testConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(writer.batches) != 0 {
		t.Errorf("lots persistés = %d, want 0", len(writer.batches))
	}
}

func TestSeeder_Run_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = -1

	writer := &fakeWriter{}
	sink := &recordingSink{}
	_, err := NewSeeder(writer, zerolog.Nop(), sink).Run(context.Background(), cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
	if writer.prepared {
		t.Error("une configuration invalide ne doit pas toucher le stockage")
	}
	if !sink.closed {
		t.Error("les sinks doivent être fermés même si la configuration est rejetée")
	}
}
