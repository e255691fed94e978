package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"salesinsights/internal/analytics/domain"
	sharedinfra "salesinsights/internal/shared/infrastructure"
)

// MetricsReader agrégations ensemblistes fournies par le stockage.
// Les filtres reçus ont toujours une année résolue.
type MetricsReader interface {
	// LatestDate retourne la date la plus récente de la dimension date
	// (false si la dimension est vide)
	LatestDate(ctx context.Context) (time.Time, bool, error)
	RevenueByMonth(ctx context.Context, customer string, years ...int) ([]domain.MonthRevenue, error)
	RevenueByYear(ctx context.Context, customer string, years ...int) ([]domain.YearRevenue, error)
	MaterialSales(ctx context.Context, f domain.Filter) ([]domain.MaterialSales, error)
	BudgetActual(ctx context.Context, f domain.Filter) (domain.BudgetActual, error)
	ForecastTotals(ctx context.Context, f domain.Filter) (domain.ForecastTotals, error)
	// CustomerSales ignore f.Customer
	CustomerSales(ctx context.Context, f domain.Filter) ([]domain.CustomerSales, error)
}

// MetricsService moteur d'agrégation: six opérations en lecture seule,
// sûres en concurrence. Les résultats sont mis en cache si un cache est fourni.
type MetricsService struct {
	reader   MetricsReader
	cache    sharedinfra.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configure un MetricsService
type Option func(*MetricsService)

// WithCache active le cache de résultats (ttl ≤ 0 le désactive)
func WithCache(cache sharedinfra.Cache, ttl time.Duration) Option {
	return func(s *MetricsService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLogger définit le logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *MetricsService) {
		s.logger = logger
	}
}

// WithClock fixe l'horloge (année par défaut d'un entrepôt vide)
func WithClock(now func() time.Time) Option {
	return func(s *MetricsService) {
		s.now = now
	}
}

// NewMetricsService crée le service
func NewMetricsService(reader MetricsReader, opts ...Option) *MetricsService {
	s := &MetricsService{
		reader: reader,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClearCache vide le cache de résultats (après un nouveau chargement)
func (s *MetricsService) ClearCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// freshness résout la date de fraîcheur et l'année par défaut.
// Entrepôt vide: année de l'horloge, date de fraîcheur vide.
func (s *MetricsService) freshness(ctx context.Context) (asOf string, latestYear int, err error) {
	latest, ok, err := s.reader.LatestDate(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("latest date: %w", err)
	}
	if !ok {
		return "", s.now().Year(), nil
	}
	return domain.FormatAsOf(latest, true), latest.Year(), nil
}

// cached exécute compute si la clé n'est pas en cache
func cached[T any](s *MetricsService, key string, compute func() (T, error)) (T, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if v, found := s.cache.Get(key); found {
			if typed, ok := v.(T); ok {
				s.logger.Debug().Str("key", key).Msg("metrics cache hit")
				return typed, nil
			}
		}
	}

	result, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		s.cache.Set(key, result, s.cacheTTL)
	}
	return result, nil
}

// ========================================
// YoY client
// ========================================

// CustomerYoYByMonth compare mois par mois le chiffre d'affaires d'un client
// sur deux années. Toujours 12 lignes; un client inconnu donne des zéros.
func (s *MetricsService) CustomerYoYByMonth(ctx context.Context, q domain.YoYQuery) (*domain.YoYResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := sharedinfra.NewCacheKeyBuilder("yoy-month").
		Add(q.Customer).AddInt(q.Year).AddInt(q.LastYear).Build()

	return cached(s, key, func() (*domain.YoYResponse, error) {
		asOf, latestYear, err := s.freshness(ctx)
		if err != nil {
			return nil, err
		}
		q := q.Resolve(latestYear)

		rows, err := s.reader.RevenueByMonth(ctx, q.Customer, q.Year, q.LastYear)
		if err != nil {
			return nil, fmt.Errorf("revenue by month: %w", err)
		}

		return &domain.YoYResponse{
			Customer: q.Customer,
			ThisYear: q.Year,
			LastYear: q.LastYear,
			Rows:     domain.BuildMonthlyYoY(rows, q.Year, q.LastYear),
			DataAsOf: asOf,
		}, nil
	})
}

// CustomerYoYTotals compare les totaux annuels d'un client.
// Une erreur de stockage est retournée telle quelle, jamais convertie en résultat vide.
func (s *MetricsService) CustomerYoYTotals(ctx context.Context, q domain.YoYQuery) (*domain.YoYTotalsResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := sharedinfra.NewCacheKeyBuilder("yoy-totals").
		Add(q.Customer).AddInt(q.Year).AddInt(q.LastYear).Build()

	return cached(s, key, func() (*domain.YoYTotalsResponse, error) {
		asOf, latestYear, err := s.freshness(ctx)
		if err != nil {
			return nil, err
		}
		q := q.Resolve(latestYear)

		rows, err := s.reader.RevenueByYear(ctx, q.Customer, q.Year, q.LastYear)
		if err != nil {
			return nil, fmt.Errorf("revenue by year: %w", err)
		}

		return &domain.YoYTotalsResponse{
			Customer: q.Customer,
			ThisYear: q.Year,
			LastYear: q.LastYear,
			Totals:   domain.BuildYoYTotals(rows, q.Year, q.LastYear),
			DataAsOf: asOf,
		}, nil
	})
}

// ========================================
// Classements
// ========================================

// TopMaterials classe les articles (code, Group1) par chiffre d'affaires
func (s *MetricsService) TopMaterials(ctx context.Context, f domain.Filter, topN int) (*domain.TopMaterialsResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateTopN(topN); err != nil {
		return nil, err
	}

	key := filterKey("top-materials", f).AddInt(topN).Build()

	return cached(s, key, func() (*domain.TopMaterialsResponse, error) {
		asOf, f, err := s.resolve(ctx, f)
		if err != nil {
			return nil, err
		}

		rows, err := s.reader.MaterialSales(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("material sales: %w", err)
		}

		return &domain.TopMaterialsResponse{
			Customer: f.Customer,
			Country:  f.Country,
			Year:     f.Year,
			Quarter:  f.Quarter,
			TopN:     topN,
			Rows:     domain.RankMaterials(rows, topN),
			DataAsOf: asOf,
		}, nil
	})
}

// TopCustomers classe les clients par chiffre d'affaires avec leur contribution
// au total de tous les clients du périmètre. Le filtre client est ignoré.
func (s *MetricsService) TopCustomers(ctx context.Context, f domain.Filter, topN int) (*domain.TopCustomersResponse, error) {
	f.Customer = ""
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateTopN(topN); err != nil {
		return nil, err
	}

	key := filterKey("top-customers", f).AddInt(topN).Build()

	return cached(s, key, func() (*domain.TopCustomersResponse, error) {
		asOf, f, err := s.resolve(ctx, f)
		if err != nil {
			return nil, err
		}

		rows, err := s.reader.CustomerSales(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("customer sales: %w", err)
		}

		return &domain.TopCustomersResponse{
			Country:  f.Country,
			Year:     f.Year,
			Quarter:  f.Quarter,
			TopN:     topN,
			Rows:     domain.RankCustomers(rows, topN),
			DataAsOf: asOf,
		}, nil
	})
}

// ========================================
// Budget / Prévisions
// ========================================

// BudgetVsActual compare le réalisé au budget
func (s *MetricsService) BudgetVsActual(ctx context.Context, f domain.Filter) (*domain.BudgetVarianceResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	key := filterKey("budget", f).Build()

	return cached(s, key, func() (*domain.BudgetVarianceResponse, error) {
		asOf, f, err := s.resolve(ctx, f)
		if err != nil {
			return nil, err
		}

		totals, err := s.reader.BudgetActual(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("budget actual: %w", err)
		}
		v := domain.NewBudgetVariance(totals)

		return &domain.BudgetVarianceResponse{
			Customer:      f.Customer,
			Country:       f.Country,
			Year:          f.Year,
			Quarter:       f.Quarter,
			Actual:        v.Actual,
			Budget:        v.Budget,
			VarianceValue: v.VarianceValue,
			VariancePct:   v.VariancePct,
			DataAsOf:      asOf,
		}, nil
	})
}

// ForecastAccuracy mesure la précision des prévisions (MAPE, biais)
func (s *MetricsService) ForecastAccuracy(ctx context.Context, f domain.Filter) (*domain.ForecastAccuracyResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	key := filterKey("forecast", f).Build()

	return cached(s, key, func() (*domain.ForecastAccuracyResponse, error) {
		asOf, f, err := s.resolve(ctx, f)
		if err != nil {
			return nil, err
		}

		totals, err := s.reader.ForecastTotals(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("forecast totals: %w", err)
		}
		acc := domain.NewForecastAccuracy(totals)

		return &domain.ForecastAccuracyResponse{
			Customer: f.Customer,
			Country:  f.Country,
			Year:     f.Year,
			Quarter:  f.Quarter,
			MAPE:     acc.MAPE,
			Bias:     acc.Bias,
			DataAsOf: asOf,
		}, nil
	})
}

// resolve applique l'année par défaut au filtre
func (s *MetricsService) resolve(ctx context.Context, f domain.Filter) (string, domain.Filter, error) {
	asOf, latestYear, err := s.freshness(ctx)
	if err != nil {
		return "", f, err
	}
	if f.Year == 0 {
		f = f.WithYear(latestYear)
	}
	return asOf, f, nil
}

func filterKey(op string, f domain.Filter) *sharedinfra.CacheKeyBuilder {
	return sharedinfra.NewCacheKeyBuilder(op).
		Add(f.Customer).
		Add(f.Country).
		AddInt(f.Year).
		AddInt(f.Quarter)
}
