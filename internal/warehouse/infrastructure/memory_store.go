package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salesinsights/internal/warehouse/domain"
)

// MemoryStore entrepôt en mémoire: dimensions + faits en ordre d'insertion.
// Les lectures concurrentes sont protégées par un RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog *domain.Catalog
	facts   []domain.FactSales
	batches []domain.BatchRecord
	now     func() time.Time
}

// NewMemoryStore crée un entrepôt vide
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Prepare vérifie que l'entrepôt est vide, ou le vide si reset
func (s *MemoryStore) Prepare(ctx context.Context, reset bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reset {
		s.catalog = nil
		s.facts = nil
		s.batches = nil
		return nil
	}
	if !s.catalog.Empty() || len(s.facts) > 0 {
		return domain.ErrAlreadySeeded
	}
	return nil
}

// InsertDimensions enregistre le catalogue des dimensions
func (s *MemoryStore) InsertDimensions(ctx context.Context, catalog *domain.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Empty() {
		return domain.ErrAlreadySeeded
	}
	s.catalog = catalog
	return nil
}

// InsertFacts ajoute un lot après vérification de ses références.
// Le lot est rejeté entièrement si une ligne est invalide.
func (s *MemoryStore) InsertFacts(ctx context.Context, batch domain.FactBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog == nil {
		return fmt.Errorf("%w: dimensions not loaded", domain.ErrUnknownReference)
	}
	for _, f := range batch.Rows {
		if err := s.catalog.Validate(f); err != nil {
			return err
		}
	}

	s.facts = append(s.facts, batch.Rows...)
	s.batches = append(s.batches, domain.NewBatchRecord(batch, s.now()))
	return nil
}

// View donne un accès en lecture cohérent au catalogue et aux faits.
// fn ne doit ni modifier ni conserver les slices reçus.
func (s *MemoryStore) View(fn func(catalog *domain.Catalog, facts []domain.FactSales) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.catalog, s.facts)
}

// Batches retourne la trace des lots chargés
func (s *MemoryStore) Batches() []domain.BatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BatchRecord, len(s.batches))
	copy(out, s.batches)
	return out
}

// FactCount retourne le nombre de faits
func (s *MemoryStore) FactCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}
