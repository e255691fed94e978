package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesinsights/internal/warehouse/domain"
)

func smallCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	c, err := domain.NewCatalog(
		[]domain.DimDate{domain.NewDimDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
		[]domain.DimCustomer{{ID: 1, Name: "Atlas Retail Group", Country: "USA"}},
		[]domain.DimPlant{{ID: 1, Code: "US-HOU-01"}},
		[]domain.DimMaterial{{ID: 1, Code: "MAT-0001"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func fact(id int64, material domain.MaterialID) domain.FactSales {
	return domain.FactSales{
		ID:         domain.FactID(id),
		Date:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CustomerID: 1,
		PlantID:    1,
		MaterialID: material,
	}
}

func TestMemoryStore_InsertAndView(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Prepare(ctx, false); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := store.InsertDimensions(ctx, smallCatalog(t)); err != nil {
		t.Fatalf("InsertDimensions: %v", err)
	}

	run := uuid.New()
	batch := domain.FactBatch{RunID: run, Seq: 1, Rows: []domain.FactSales{fact(1, 1), fact(2, 1)}}
	if err := store.InsertFacts(ctx, batch); err != nil {
		t.Fatalf("InsertFacts: %v", err)
	}

	err := store.View(func(c *domain.Catalog, facts []domain.FactSales) error {
		if len(facts) != 2 || len(c.Customers) != 1 {
			t.Errorf("View: %d faits, %d clients", len(facts), len(c.Customers))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	recs := store.Batches()
	if len(recs) != 1 || recs[0].RunID != run || recs[0].FirstFactID != 1 || recs[0].LastFactID != 2 {
		t.Errorf("Batches = %+v", recs)
	}
}

func TestMemoryStore_RejectsUnknownReference(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.InsertDimensions(ctx, smallCatalog(t))

	batch := domain.FactBatch{Seq: 1, Rows: []domain.FactSales{fact(1, 1), fact(2, 42)}}
	if err := store.InsertFacts(ctx, batch); !errors.Is(err, domain.ErrUnknownReference) {
		t.Fatalf("err = %v, want ErrUnknownReference", err)
	}
	if store.FactCount() != 0 {
		t.Errorf("FactCount = %d, le lot doit être rejeté entièrement", store.FactCount())
	}
}

func TestMemoryStore_PrepareAlreadySeeded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.InsertDimensions(ctx, smallCatalog(t))

	if err := store.Prepare(ctx, false); !errors.Is(err, domain.ErrAlreadySeeded) {
		t.Errorf("Prepare(false) = %v, want ErrAlreadySeeded", err)
	}
	if err := store.Prepare(ctx, true); err != nil {
		t.Errorf("Prepare(true) = %v", err)
	}
	if err := store.Prepare(ctx, false); err != nil {
		t.Errorf("Prepare après reset = %v", err)
	}
}

func TestMemoryStore_InsertFactsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	err := store.InsertFacts(ctx, domain.FactBatch{Rows: []domain.FactSales{fact(1, 1)}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
