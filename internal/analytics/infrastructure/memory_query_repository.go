package infrastructure

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"salesinsights/internal/analytics/domain"
	shared "salesinsights/internal/shared/domain"
	warehouse "salesinsights/internal/warehouse/domain"
	warehouseinfra "salesinsights/internal/warehouse/infrastructure"
)

// MemoryQueryRepository agrégations calculées sur l'entrepôt en mémoire
type MemoryQueryRepository struct {
	store *warehouseinfra.MemoryStore
}

// NewMemoryQueryRepository crée le repository
func NewMemoryQueryRepository(store *warehouseinfra.MemoryStore) *MemoryQueryRepository {
	return &MemoryQueryRepository{store: store}
}

// joinedFact fait enrichi de ses dimensions
type joinedFact struct {
	fact     *warehouse.FactSales
	date     warehouse.DimDate
	customer warehouse.DimCustomer
	material warehouse.DimMaterial
}

// scan parcourt les faits du périmètre du filtre en lecture cohérente.
// Un fait dont une dimension est absente est ignoré (jointure interne).
func (r *MemoryQueryRepository) scan(ctx context.Context, f domain.Filter, fn func(j joinedFact)) error {
	return r.store.View(func(catalog *warehouse.Catalog, facts []warehouse.FactSales) error {
		if catalog == nil {
			return nil
		}
		for i := range facts {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			j, ok := join(catalog, &facts[i])
			if !ok || !matches(j, f) {
				continue
			}
			fn(j)
		}
		return nil
	})
}

func join(catalog *warehouse.Catalog, f *warehouse.FactSales) (joinedFact, bool) {
	d, ok := catalog.DateOf(f.Date)
	if !ok {
		return joinedFact{}, false
	}
	c, ok := catalog.Customer(f.CustomerID)
	if !ok {
		return joinedFact{}, false
	}
	m, ok := catalog.Material(f.MaterialID)
	if !ok {
		return joinedFact{}, false
	}
	return joinedFact{fact: f, date: d, customer: c, material: m}, true
}

func matches(j joinedFact, f domain.Filter) bool {
	if f.Customer != "" && j.customer.Name != f.Customer {
		return false
	}
	if f.Country != "" && j.customer.Country != f.Country {
		return false
	}
	if f.Year != 0 && j.date.Year != f.Year {
		return false
	}
	if f.Quarter != 0 && j.date.Quarter != f.Quarter {
		return false
	}
	return true
}

// LatestDate retourne la date la plus récente de la dimension date
func (r *MemoryQueryRepository) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var (
		latest time.Time
		found  bool
	)
	err := r.store.View(func(catalog *warehouse.Catalog, _ []warehouse.FactSales) error {
		if catalog == nil {
			return nil
		}
		for _, d := range catalog.Dates {
			if !found || d.Date.After(latest) {
				latest, found = d.Date, true
			}
		}
		return nil
	})
	return latest, found, err
}

// RevenueByMonth chiffre d'affaires d'un client par (année, mois)
func (r *MemoryQueryRepository) RevenueByMonth(ctx context.Context, customer string, years ...int) ([]domain.MonthRevenue, error) {
	type key struct{ year, month int }
	sums := make(map[key]decimal.Decimal)

	err := r.scan(ctx, domain.Filter{Customer: customer}, func(j joinedFact) {
		if !slices.Contains(years, j.date.Year) {
			return
		}
		k := key{j.date.Year, j.date.Month}
		sums[k] = sums[k].Add(j.fact.Revenue())
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MonthRevenue, 0, len(sums))
	for k, v := range sums {
		out = append(out, domain.MonthRevenue{Year: k.year, Month: k.month, Revenue: v})
	}
	return out, nil
}

// RevenueByYear chiffre d'affaires d'un client par année
func (r *MemoryQueryRepository) RevenueByYear(ctx context.Context, customer string, years ...int) ([]domain.YearRevenue, error) {
	sums := make(map[int]decimal.Decimal)

	err := r.scan(ctx, domain.Filter{Customer: customer}, func(j joinedFact) {
		if !slices.Contains(years, j.date.Year) {
			return
		}
		sums[j.date.Year] = sums[j.date.Year].Add(j.fact.Revenue())
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.YearRevenue, 0, len(sums))
	for y, v := range sums {
		out = append(out, domain.YearRevenue{Year: y, Revenue: v})
	}
	return out, nil
}

// MaterialSales ventes groupées par (code article, Group1)
func (r *MemoryQueryRepository) MaterialSales(ctx context.Context, f domain.Filter) ([]domain.MaterialSales, error) {
	type key struct{ code, group1 string }
	groups := make(map[key]*domain.MaterialSales)

	err := r.scan(ctx, f, func(j joinedFact) {
		k := key{j.material.Code, j.material.Group1}
		g, ok := groups[k]
		if !ok {
			g = &domain.MaterialSales{MaterialCode: k.code, Group1: k.group1}
			groups[k] = g
		}
		g.Revenue = g.Revenue.Add(j.fact.Revenue())
		g.Units = g.Units.Add(j.fact.Units())
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.MaterialSales, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

// CustomerSales ventes groupées par client (le filtre client est ignoré)
func (r *MemoryQueryRepository) CustomerSales(ctx context.Context, f domain.Filter) ([]domain.CustomerSales, error) {
	f.Customer = ""
	groups := make(map[warehouse.CustomerID]*domain.CustomerSales)

	err := r.scan(ctx, f, func(j joinedFact) {
		g, ok := groups[j.customer.ID]
		if !ok {
			g = &domain.CustomerSales{CustomerName: j.customer.Name, Country: j.customer.Country}
			groups[j.customer.ID] = g
		}
		g.Revenue = g.Revenue.Add(j.fact.Revenue())
		g.Units = g.Units.Add(j.fact.Units())
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.CustomerSales, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out, nil
}

// BudgetActual totaux réalisé / budget du périmètre
func (r *MemoryQueryRepository) BudgetActual(ctx context.Context, f domain.Filter) (domain.BudgetActual, error) {
	var t domain.BudgetActual
	err := r.scan(ctx, f, func(j joinedFact) {
		t.Actual = t.Actual.Add(j.fact.Revenue())
		t.Budget = t.Budget.Add(shared.ValueOrZero(j.fact.BudgetValue))
	})
	return t, err
}

// ForecastTotals sommes des erreurs sur les lignes ayant une prévision
func (r *MemoryQueryRepository) ForecastTotals(ctx context.Context, f domain.Filter) (domain.ForecastTotals, error) {
	var t domain.ForecastTotals
	err := r.scan(ctx, f, func(j joinedFact) {
		if !j.fact.ForecastValue.Valid {
			return
		}
		actual := j.fact.Revenue()
		forecast := j.fact.ForecastValue.Decimal

		t.Rows++
		t.SumAPE = t.SumAPE.Add(domain.AbsolutePercentageError(actual, forecast))
		t.Bias = t.Bias.Add(actual.Sub(forecast))
	})
	return t, err
}
