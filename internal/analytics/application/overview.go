package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"salesinsights/internal/analytics/domain"
)

// OverviewTopN nombre de lignes des classements de la synthèse
const OverviewTopN = 5

// Overview calcule en parallèle les indicateurs d'un périmètre.
// La comparaison YoY n'est calculée que si un client est filtré.
// La première erreur annule les autres calculs.
func (s *MetricsService) Overview(ctx context.Context, f domain.Filter) (*domain.Overview, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	asOf, f, err := s.resolve(ctx, f)
	if err != nil {
		return nil, err
	}

	out := &domain.Overview{
		Customer: f.Customer,
		Country:  f.Country,
		Year:     f.Year,
		Quarter:  f.Quarter,
		DataAsOf: asOf,
	}

	g, gctx := errgroup.WithContext(ctx)

	if f.Customer != "" {
		g.Go(func() error {
			yoy, err := s.CustomerYoYTotals(gctx, domain.YoYQuery{Customer: f.Customer, Year: f.Year})
			out.YoY = yoy
			return err
		})
	}
	g.Go(func() error {
		top, err := s.TopMaterials(gctx, f, OverviewTopN)
		out.TopMaterials = top
		return err
	})
	g.Go(func() error {
		top, err := s.TopCustomers(gctx, f, OverviewTopN)
		out.TopCustomers = top
		return err
	})
	g.Go(func() error {
		v, err := s.BudgetVsActual(gctx, f)
		out.BudgetVariance = v
		return err
	})
	g.Go(func() error {
		acc, err := s.ForecastAccuracy(gctx, f)
		out.ForecastAccuracy = acc
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
