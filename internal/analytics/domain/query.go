package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuery est retournée pour des paramètres rejetés avant tout accès au stockage
var ErrInvalidQuery = errors.New("invalid query")

// Filter regroupe les filtres optionnels des requêtes analytiques.
// Valeur zéro = filtre absent ("" pour les textes, 0 pour année et trimestre).
type Filter struct {
	Customer string
	Country  string
	Year     int
	Quarter  int
}

// Validate vérifie les bornes des filtres
func (f Filter) Validate() error {
	if f.Year < 0 {
		return fmt.Errorf("%w: year must be positive, got %d", ErrInvalidQuery, f.Year)
	}
	if f.Quarter < 0 || f.Quarter > 4 {
		return fmt.Errorf("%w: quarter must be between 1 and 4, got %d", ErrInvalidQuery, f.Quarter)
	}
	return nil
}

// WithYear retourne une copie du filtre avec l'année résolue
func (f Filter) WithYear(year int) Filter {
	f.Year = year
	return f
}

// ValidateTopN vérifie le nombre de lignes demandées
func ValidateTopN(topN int) error {
	if topN <= 0 {
		return fmt.Errorf("%w: topN must be > 0, got %d", ErrInvalidQuery, topN)
	}
	return nil
}

// YoYQuery paramètres des comparaisons annuelles d'un client
type YoYQuery struct {
	Customer string
	Year     int
	LastYear int
}

// Validate vérifie les paramètres YoY
func (q YoYQuery) Validate() error {
	if q.Customer == "" {
		return fmt.Errorf("%w: customer is required", ErrInvalidQuery)
	}
	if q.Year < 0 || q.LastYear < 0 {
		return fmt.Errorf("%w: years must be positive", ErrInvalidQuery)
	}
	return nil
}

// Resolve applique les années par défaut: année ancre = dernière année
// présente, année précédente = ancre - 1
func (q YoYQuery) Resolve(latestYear int) YoYQuery {
	if q.Year == 0 {
		q.Year = latestYear
	}
	if q.LastYear == 0 {
		q.LastYear = q.Year - 1
	}
	return q
}

// ========================================
// Lignes agrégées retournées par le stockage (non arrondies)
// ========================================

// MonthRevenue chiffre d'affaires d'un mois
type MonthRevenue struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
}

// YearRevenue chiffre d'affaires d'une année
type YearRevenue struct {
	Year    int
	Revenue decimal.Decimal
}

// MaterialSales ventes d'un groupe (code article, Group1)
type MaterialSales struct {
	MaterialCode string
	Group1       string
	Revenue      decimal.Decimal
	Units        decimal.Decimal
}

// CustomerSales ventes d'un client
type CustomerSales struct {
	CustomerName string
	Country      string
	Revenue      decimal.Decimal
	Units        decimal.Decimal
}

// BudgetActual totaux réalisé / budget
type BudgetActual struct {
	Actual decimal.Decimal
	Budget decimal.Decimal
}

// ForecastTotals sommes nécessaires au calcul de la précision des prévisions.
// Seules les lignes avec une prévision sont comptées.
type ForecastTotals struct {
	Rows   int64
	SumAPE decimal.Decimal
	Bias   decimal.Decimal
}
