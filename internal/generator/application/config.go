package application

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	shared "salesinsights/internal/shared/domain"
)

// ErrInvalidConfig est retournée pour une configuration de génération invalide
var ErrInvalidConfig = errors.New("invalid generator config")

// Mode de génération
type Mode string

const (
	// ModeSequential: un seul flux aléatoire consommé jour après jour (contrat par défaut)
	ModeSequential Mode = "sequential"
	// ModePerDay: un flux indépendant par jour, dérivé de (seed, date).
	// Reproductible, mais ne produit pas les mêmes lignes que ModeSequential.
	ModePerDay Mode = "per-day"
)

// Config paramètre une génération
type Config struct {
	YearsBack     int
	Seed          uint64
	MaterialCount int
	BatchSize     int

	CustomersPerDay int
	PlantsPerDay    int
	MaterialsPerDay int

	Mode    Mode
	Workers int

	// Today fixe la date de référence (zéro = date du jour)
	Today time.Time
	// Reset vide l'entrepôt avant de le remplir
	Reset bool
}

// DefaultConfig retourne la configuration par défaut
func DefaultConfig() Config {
	return Config{
		YearsBack:       3,
		Seed:            42,
		MaterialCount:   120,
		BatchSize:       25_000,
		CustomersPerDay: 8,
		PlantsPerDay:    2,
		MaterialsPerDay: 15,
		Mode:            ModeSequential,
		Workers:         runtime.NumCPU(),
	}
}

// Validate rejette une configuration invalide avant tout accès au stockage
func (c Config) Validate() error {
	switch {
	case c.YearsBack < 0:
		return fmt.Errorf("%w: years back must be >= 0, got %d", ErrInvalidConfig, c.YearsBack)
	case c.MaterialCount <= 0:
		return fmt.Errorf("%w: material count must be > 0, got %d", ErrInvalidConfig, c.MaterialCount)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be > 0, got %d", ErrInvalidConfig, c.BatchSize)
	case c.CustomersPerDay <= 0 || c.PlantsPerDay <= 0 || c.MaterialsPerDay <= 0:
		return fmt.Errorf("%w: daily draws must be > 0", ErrInvalidConfig)
	}

	switch c.Mode {
	case ModeSequential:
	case ModePerDay:
		if c.Workers <= 0 {
			return fmt.Errorf("%w: workers must be > 0 in %s mode", ErrInvalidConfig, c.Mode)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// ReferenceDay retourne la date de référence (aujourd'hui par défaut)
func (c Config) ReferenceDay() time.Time {
	if c.Today.IsZero() {
		return shared.CivilDate(time.Now())
	}
	return shared.CivilDate(c.Today)
}

// Span retourne la période couverte par la dimension date
func (c Config) Span() (shared.DateSpan, error) {
	span, err := shared.NewDateSpanYearsBack(c.YearsBack, c.ReferenceDay())
	if err != nil {
		return shared.DateSpan{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return span, nil
}
