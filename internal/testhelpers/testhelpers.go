package testhelpers

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"salesinsights/database"
	genapp "salesinsights/internal/generator/application"
	sharedinfra "salesinsights/internal/shared/infrastructure"
	warehouseinfra "salesinsights/internal/warehouse/infrastructure"
)

// Today date de référence fixe des jeux de test
var Today = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

// TestContext contient les dépendances des tests d'intégration PostgreSQL
// Note: Ne contient PAS les services pour éviter les import cycles
type TestContext struct {
	DB     *sql.DB
	Driver string

	// Infrastructure
	Cache sharedinfra.Cache
}

// SeedConfig configuration de génération réduite pour les tests
func SeedConfig(yearsBack int, seed uint64) genapp.Config {
	cfg := genapp.DefaultConfig()
	cfg.YearsBack = yearsBack
	cfg.Seed = seed
	cfg.MaterialCount = 30
	cfg.BatchSize = 5_000
	cfg.Workers = 4
	cfg.Today = Today
	return cfg
}

// SeedMemoryStore remplit un entrepôt en mémoire de façon déterministe
func SeedMemoryStore(tb testing.TB, yearsBack int, seed uint64) *warehouseinfra.MemoryStore {
	tb.Helper()

	store := warehouseinfra.NewMemoryStore()
	seeder := genapp.NewSeeder(store, zerolog.Nop())
	if _, err := seeder.Run(context.Background(), SeedConfig(yearsBack, seed)); err != nil {
		tb.Fatalf("Failed to seed memory store: %v", err)
	}
	return store
}

// connString construit la connection string depuis l'environnement
func connString() string {
	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	return database.ConnString(
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "salesuser"),
		getEnv("DB_PASSWORD", "salespass"),
		getEnv("DB_NAME", "salesdb"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// SetupTestDB initialise une connexion à la base de données de test
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := database.Open(context.Background(), testDriver(), connString())
	if err != nil {
		tb.Fatalf("Failed to open database: %v\nConnection string: %s", err, hidePassword(connString()))
	}
	return db
}

// SetupTestContext initialise un contexte de test avec DB et cache
func SetupTestContext(tb testing.TB) *TestContext {
	tb.Helper()

	ctx := &TestContext{Driver: testDriver()}
	ctx.DB = SetupTestDB(tb)
	ctx.Cache = sharedinfra.NewShardedCache(16)

	return ctx
}

// SeedDatabase remplit la base de test (reset) de façon déterministe
func (ctx *TestContext) SeedDatabase(tb testing.TB, yearsBack int, seed uint64) *genapp.SeedSummary {
	tb.Helper()

	cfg := SeedConfig(yearsBack, seed)
	cfg.Reset = true

	writer := warehouseinfra.NewPostgresWriter(ctx.DB, ctx.Driver)
	summary, err := genapp.NewSeeder(writer, zerolog.Nop()).Run(context.Background(), cfg)
	if err != nil {
		tb.Fatalf("Failed to seed database: %v", err)
	}

	records, err := writer.Batches(context.Background(), summary.RunID.String())
	if err != nil {
		tb.Fatalf("Failed to read load_batch: %v", err)
	}
	if len(records) != summary.Batches {
		tb.Fatalf("load_batch = %d lots, attendu %d", len(records), summary.Batches)
	}
	return summary
}

// Cleanup libère les ressources du contexte de test
func (ctx *TestContext) Cleanup() {
	if ctx.DB != nil {
		ctx.DB.Close()
	}
}

// ClearCache vide le cache (utile entre les benchmarks)
func (ctx *TestContext) ClearCache() {
	if ctx.Cache != nil {
		ctx.Cache.Clear()
	}
}

func testDriver() string {
	return getEnv("DB_DRIVER", database.DriverPQ)
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// hidePassword masque le mot de passe dans la connection string pour les logs
func hidePassword(connStr string) string {
	return "host=... (password hidden)"
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	if testing.Short() {
		tb.Skip("Skipping database test in short mode")
	}

	db, err := database.Open(context.Background(), testDriver(), connString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	db.Close()
}
