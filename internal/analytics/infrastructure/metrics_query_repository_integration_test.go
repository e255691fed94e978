package infrastructure_test

import (
	"context"
	"testing"

	"salesinsights/internal/analytics/application"
	"salesinsights/internal/analytics/domain"
	analyticsinfra "salesinsights/internal/analytics/infrastructure"
	"salesinsights/internal/testhelpers"
)

// Les deux stockages doivent produire les mêmes indicateurs pour un même seed
func TestMetricsQueryRepository_MatchesMemory(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)

	tc := testhelpers.SetupTestContext(t)
	defer tc.Cleanup()
	tc.SeedDatabase(t, 0, 42)

	pg := application.NewMetricsService(analyticsinfra.NewMetricsQueryRepository(tc.DB))
	mem := application.NewMetricsService(analyticsinfra.NewMemoryQueryRepository(testhelpers.SeedMemoryStore(t, 0, 42)))
	ctx := context.Background()

	filters := []domain.Filter{
		{},
		{Country: "UK"},
		{Customer: "Atlas Retail Group", Quarter: 1},
	}

	for _, f := range filters {
		pgTop, err := pg.TopMaterials(ctx, f, 10)
		if err != nil {
			t.Fatalf("postgres TopMaterials(%+v): %v", f, err)
		}
		memTop, err := mem.TopMaterials(ctx, f, 10)
		if err != nil {
			t.Fatalf("memory TopMaterials(%+v): %v", f, err)
		}
		if pgTop.DataAsOf != memTop.DataAsOf || len(pgTop.Rows) != len(memTop.Rows) {
			t.Fatalf("TopMaterials(%+v): postgres %+v, memory %+v", f, pgTop, memTop)
		}
		for i := range pgTop.Rows {
			p, m := pgTop.Rows[i], memTop.Rows[i]
			if p.MaterialCode != m.MaterialCode || !p.Revenue.Equal(m.Revenue) || !p.Units.Equal(m.Units) {
				t.Errorf("TopMaterials(%+v)[%d]: postgres %+v, memory %+v", f, i, p, m)
			}
		}

		pgBudget, err := pg.BudgetVsActual(ctx, f)
		if err != nil {
			t.Fatalf("postgres BudgetVsActual(%+v): %v", f, err)
		}
		memBudget, err := mem.BudgetVsActual(ctx, f)
		if err != nil {
			t.Fatalf("memory BudgetVsActual(%+v): %v", f, err)
		}
		if !pgBudget.Actual.Equal(memBudget.Actual) || !pgBudget.Budget.Equal(memBudget.Budget) {
			t.Errorf("BudgetVsActual(%+v): postgres %+v, memory %+v", f, pgBudget, memBudget)
		}

		pgAcc, err := pg.ForecastAccuracy(ctx, f)
		if err != nil {
			t.Fatalf("postgres ForecastAccuracy(%+v): %v", f, err)
		}
		memAcc, err := mem.ForecastAccuracy(ctx, f)
		if err != nil {
			t.Fatalf("memory ForecastAccuracy(%+v): %v", f, err)
		}
		if !pgAcc.MAPE.Equal(memAcc.MAPE) || !pgAcc.Bias.Equal(memAcc.Bias) {
			t.Errorf("ForecastAccuracy(%+v): postgres %+v, memory %+v", f, pgAcc, memAcc)
		}
	}

	pgYoY, err := pg.CustomerYoYByMonth(ctx, domain.YoYQuery{Customer: "Crown Markets"})
	if err != nil {
		t.Fatalf("postgres CustomerYoYByMonth: %v", err)
	}
	memYoY, err := mem.CustomerYoYByMonth(ctx, domain.YoYQuery{Customer: "Crown Markets"})
	if err != nil {
		t.Fatalf("memory CustomerYoYByMonth: %v", err)
	}
	for i := range pgYoY.Rows {
		if !pgYoY.Rows[i].ThisYear.Equal(memYoY.Rows[i].ThisYear) {
			t.Errorf("mois %d: postgres %s, memory %s", i+1, pgYoY.Rows[i].ThisYear, memYoY.Rows[i].ThisYear)
		}
	}
}

func BenchmarkMetricsQueryRepository_TopCustomers(b *testing.B) {
	testhelpers.SkipIfNoDatabase(b)

	tc := testhelpers.SetupTestContext(b)
	defer tc.Cleanup()

	svc := application.NewMetricsService(analyticsinfra.NewMetricsQueryRepository(tc.DB))
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.TopCustomers(ctx, domain.Filter{}, 10); err != nil {
			b.Fatal(err)
		}
	}
}
