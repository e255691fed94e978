package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	gendomain "salesinsights/internal/generator/domain"
	sharedinfra "salesinsights/internal/shared/infrastructure"
	warehouse "salesinsights/internal/warehouse/domain"
)

// WarehouseWriter est le chemin d'écriture de l'entrepôt
type WarehouseWriter interface {
	// Prepare vérifie que l'entrepôt est vide, ou le vide si reset
	Prepare(ctx context.Context, reset bool) error
	InsertDimensions(ctx context.Context, catalog *warehouse.Catalog) error
	InsertFacts(ctx context.Context, batch warehouse.FactBatch) error
}

// SeedSummary résume une génération
type SeedSummary struct {
	RunID     uuid.UUID
	Mode      Mode
	Seed      uint64
	Days      int
	Customers int
	Plants    int
	Materials int
	Facts     int64
	Batches   int
	DataAsOf  time.Time
	Duration  time.Duration
}

// Seeder orchestre la construction du catalogue, la génération
// et le chargement par lots vers l'entrepôt et les sinks
type Seeder struct {
	writer WarehouseWriter
	sinks  []warehouse.FactSink
	logger zerolog.Logger
	now    func() time.Time

	// OnBatch est appelé après chaque lot persisté (progression)
	OnBatch func(rec warehouse.BatchRecord)
}

// NewSeeder crée un seeder
func NewSeeder(writer WarehouseWriter, logger zerolog.Logger, sinks ...warehouse.FactSink) *Seeder {
	return &Seeder{
		writer: writer,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Run exécute une génération complète.
// Un échec de lot interrompt le run et est retourné sous forme de *BatchError;
// les lots déjà persistés ne sont pas annulés.
func (s *Seeder) Run(ctx context.Context, cfg Config) (summary *SeedSummary, err error) {
	defer func() {
		if cerr := s.closeSinks(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	span, err := cfg.Span()
	if err != nil {
		return nil, err
	}

	catalog, err := gendomain.BuildCatalog(span, cfg.MaterialCount)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	gen, err := NewGenerator(catalog, cfg)
	if err != nil {
		return nil, err
	}

	start := s.now()
	runID := uuid.New()
	log := s.logger.With().Str("run_id", runID.String()).Logger()
	log.Info().
		Int("years_back", cfg.YearsBack).
		Uint64("seed", cfg.Seed).
		Str("mode", string(cfg.Mode)).
		Int("batch_size", cfg.BatchSize).
		Msg("seeding warehouse")

	if err := s.writer.Prepare(ctx, cfg.Reset); err != nil {
		return nil, fmt.Errorf("prepare warehouse: %w", err)
	}
	if err := s.writer.InsertDimensions(ctx, catalog); err != nil {
		return nil, fmt.Errorf("insert dimensions: %w", err)
	}
	log.Info().
		Int("dates", len(catalog.Dates)).
		Int("customers", len(catalog.Customers)).
		Int("plants", len(catalog.Plants)).
		Int("materials", len(catalog.Materials)).
		Msg("dimensions loaded")

	summary = &SeedSummary{
		RunID:     runID,
		Mode:      cfg.Mode,
		Seed:      cfg.Seed,
		Days:      len(catalog.Dates),
		Customers: len(catalog.Customers),
		Plants:    len(catalog.Plants),
		Materials: len(catalog.Materials),
		DataAsOf:  span.End(),
	}

	// Un seul flusher: le lot N+1 se construit pendant que le lot N s'écrit
	flusher := sharedinfra.NewSerialWorker(ctx, 1)
	flusher.Start()

	seq := 0
	streamErr := gen.Stream(ctx, func(rows []warehouse.FactSales) error {
		seq++
		batch := warehouse.FactBatch{RunID: runID, Seq: seq, Rows: rows}
		return flusher.Submit(func(ctx context.Context) error {
			if err := s.flush(ctx, log, batch); err != nil {
				return err
			}
			summary.Facts += int64(len(batch.Rows))
			summary.Batches++
			return nil
		})
	})

	// L'erreur du flusher prime: elle identifie le lot en échec
	if err := flusher.Wait(); err != nil {
		return nil, err
	}
	if streamErr != nil {
		return nil, streamErr
	}

	summary.Duration = s.now().Sub(start)
	log.Info().
		Int64("facts", summary.Facts).
		Int("batches", summary.Batches).
		Dur("duration", summary.Duration).
		Msg("seeding complete")

	return summary, nil
}

// flush persiste un lot dans l'entrepôt puis dans chaque sink
func (s *Seeder) flush(ctx context.Context, log zerolog.Logger, batch warehouse.FactBatch) error {
	batchErr := func(err error) error {
		return &warehouse.BatchError{RunID: batch.RunID, Seq: batch.Seq, Rows: len(batch.Rows), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return batchErr(err)
	}
	if err := s.writer.InsertFacts(ctx, batch); err != nil {
		log.Error().Err(err).Int("seq", batch.Seq).Int("rows", len(batch.Rows)).Msg("batch insert failed")
		return batchErr(err)
	}
	for _, sink := range s.sinks {
		if err := sink.WriteBatch(ctx, batch); err != nil {
			log.Error().Err(err).Int("seq", batch.Seq).Msg("batch export failed")
			return batchErr(err)
		}
	}

	rec := warehouse.NewBatchRecord(batch, s.now())
	log.Debug().
		Int("seq", rec.Seq).
		Int("rows", rec.RowCount).
		Int64("first_id", int64(rec.FirstFactID)).
		Int64("last_id", int64(rec.LastFactID)).
		Msg("batch flushed")
	if s.OnBatch != nil {
		s.OnBatch(rec)
	}
	return nil
}

func (s *Seeder) closeSinks() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
