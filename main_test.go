package main

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"salesinsights/internal/analytics/domain"
	"salesinsights/internal/config"
)

func memoryConfig(years int) *config.Config {
	return &config.Config{
		Store: config.StoreMemory,
		Seed:  config.SeedConfig{Years: years, Seed: 42, BatchSize: 25_000, Materials: 40},
	}
}

func TestOpenReader_Memory(t *testing.T) {
	reader, closeStore, err := openReader(context.Background(), memoryConfig(0), zerolog.Nop())
	if err != nil {
		t.Fatalf("openReader failed: %v", err)
	}
	defer closeStore()

	if _, ok, err := reader.LatestDate(context.Background()); err != nil || !ok {
		t.Errorf("LatestDate: ok = %v, err = %v", ok, err)
	}
	rows, err := reader.CustomerSales(context.Background(), domain.Filter{})
	if err != nil || len(rows) == 0 {
		t.Errorf("CustomerSales = %d lignes, err = %v", len(rows), err)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	var logs bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv, zerolog.New(&logs)) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve ne s'arrête pas après l'annulation")
	}
	if bytes.Contains(logs.Bytes(), []byte("graceful shutdown failed")) {
		t.Errorf("arrêt inattendu en erreur: %s", logs.String())
	}
}

func TestServe_ListenError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{Addr: "127.0.0.1:-1"}
	if err := serve(ctx, srv, zerolog.Nop()); err == nil {
		t.Fatal("serve doit retourner l'erreur d'écoute")
	}
}

// Benchmark du démarrage en mode mémoire (génération + chargement)
func BenchmarkOpenReader_Memory_1Year(b *testing.B) {
	cfg := memoryConfig(1)
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := openReader(context.Background(), cfg, zerolog.Nop()); err != nil {
			b.Fatal(err)
		}
	}
}
