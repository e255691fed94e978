package application_test

import (
	"context"
	"testing"
	"time"

	"salesinsights/internal/analytics/application"
	"salesinsights/internal/analytics/domain"
	analyticsinfra "salesinsights/internal/analytics/infrastructure"
	"salesinsights/internal/testhelpers"
)

// ========================================
// INTEGRATION - REAL DATABASE
// ========================================
// Agrégations SQL, fan-out de la synthèse et cache sur PostgreSQL.

func setupPostgresService(tc *testhelpers.TestContext) *application.MetricsService {
	return application.NewMetricsService(
		analyticsinfra.NewMetricsQueryRepository(tc.DB),
		application.WithCache(tc.Cache, time.Minute),
	)
}

func TestMetricsService_Postgres_EndToEnd(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)

	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()
	summary := tc.SeedDatabase(t, 1, 42)
	if summary.Facts == 0 {
		t.Fatal("aucun fait généré")
	}

	svc := setupPostgresService(tc)
	ctx := context.Background()

	yoy, err := svc.CustomerYoYByMonth(ctx, domain.YoYQuery{Customer: customer})
	if err != nil {
		t.Fatalf("CustomerYoYByMonth failed: %v", err)
	}
	if len(yoy.Rows) != 12 || yoy.DataAsOf != "2025-03-14" {
		t.Errorf("yoy = %d lignes, DataAsOf %q", len(yoy.Rows), yoy.DataAsOf)
	}

	empty, err := svc.BudgetVsActual(ctx, domain.Filter{Year: 2030})
	if err != nil {
		t.Fatalf("BudgetVsActual failed: %v", err)
	}
	if !empty.Actual.IsZero() || empty.VariancePct.Valid {
		t.Errorf("année vide = %+v", empty)
	}

	overview, err := svc.Overview(ctx, domain.Filter{Customer: customer})
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if overview.YoY == nil || len(overview.TopMaterials.Rows) == 0 {
		t.Errorf("overview incomplet: %+v", overview)
	}
}

// BenchmarkOverview_Postgres compare cache froid et cache chaud
func BenchmarkOverview_Postgres(b *testing.B) {
	testhelpers.SkipIfNoDatabase(b)

	tc := testhelpers.SetupTestContext(b)
	defer tc.Cleanup()

	svc := setupPostgresService(tc)
	ctx := context.Background()
	f := domain.Filter{Customer: customer}

	b.Run("CacheMiss", func(b *testing.B) {
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			b.StopTimer()
			tc.ClearCache()
			b.StartTimer()

			if _, err := svc.Overview(ctx, f); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("CacheHit", func(b *testing.B) {
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			if _, err := svc.Overview(ctx, f); err != nil {
				b.Fatal(err)
			}
		}
	})
}
