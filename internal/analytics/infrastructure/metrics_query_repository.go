package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salesinsights/internal/analytics/domain"
	"salesinsights/internal/shared/infrastructure"
)

// Expressions partagées par toutes les requêtes: repli du chiffre d'affaires
// et des unités quand les mesures nettes sont absentes
const (
	revenueExpr = `COALESCE(f.net_qty * f.net_selling_price, f.confirmed_value, 0)`
	unitsExpr   = `COALESCE(f.net_qty, f.confirmed_qty, 0)`
)

// filterClause filtres optionnels: un paramètre NULL désactive le filtre.
// Les paramètres $1..$4 sont (client, pays, année, trimestre).
const filterClause = `
	($1::text IS NULL OR c.customer_name = $1)
	AND ($2::text IS NULL OR c.country = $2)
	AND ($3::int IS NULL OR d.year = $3)
	AND ($4::int IS NULL OR d.quarter = $4)`

const factJoins = `
	FROM fact_sales f
	JOIN dim_date d ON d.date = f.date
	JOIN dim_customer c ON c.customer_id = f.customer_id
	JOIN dim_material m ON m.material_id = f.material_id`

// MetricsQueryRepository agrégations ensemblistes sur l'entrepôt PostgreSQL
type MetricsQueryRepository struct {
	infrastructure.BaseRepository
}

// NewMetricsQueryRepository crée le repository
func NewMetricsQueryRepository(db *sql.DB) *MetricsQueryRepository {
	return &MetricsQueryRepository{
		BaseRepository: infrastructure.NewBaseRepository(db),
	}
}

func filterArgs(f domain.Filter) []any {
	return []any{nullString(f.Customer), nullString(f.Country), nullInt(f.Year), nullInt(f.Quarter)}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// yearsIn construit "d.year IN ($2, $3, ...)" à partir du paramètre first
func yearsIn(first int, years []int) (string, []any) {
	placeholders := make([]string, len(years))
	args := make([]any, len(years))
	for i, y := range years {
		placeholders[i] = "$" + strconv.Itoa(first+i)
		args[i] = y
	}
	return "d.year IN (" + strings.Join(placeholders, ", ") + ")", args
}

// LatestDate retourne MAX(date) de la dimension date
func (r *MetricsQueryRepository) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var latest sql.NullTime
	if err := r.QueryRow(ctx, `SELECT MAX(date) FROM dim_date`).Scan(&latest); err != nil {
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time.UTC(), true, nil
}

// RevenueByMonth chiffre d'affaires d'un client par (année, mois)
func (r *MetricsQueryRepository) RevenueByMonth(ctx context.Context, customer string, years ...int) ([]domain.MonthRevenue, error) {
	if len(years) == 0 {
		return nil, nil
	}
	inYears, yearArgs := yearsIn(2, years)
	query := `
		SELECT d.year, d.month, SUM(` + revenueExpr + `)
		FROM fact_sales f
		JOIN dim_date d ON d.date = f.date
		JOIN dim_customer c ON c.customer_id = f.customer_id
		WHERE c.customer_name = $1 AND ` + inYears + `
		GROUP BY d.year, d.month
	`

	rows, err := r.Query(ctx, query, append([]any{customer}, yearArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthRevenue
	for rows.Next() {
		var m domain.MonthRevenue
		if err := rows.Scan(&m.Year, &m.Month, &m.Revenue); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// RevenueByYear chiffre d'affaires d'un client par année
func (r *MetricsQueryRepository) RevenueByYear(ctx context.Context, customer string, years ...int) ([]domain.YearRevenue, error) {
	if len(years) == 0 {
		return nil, nil
	}
	inYears, yearArgs := yearsIn(2, years)
	query := `
		SELECT d.year, SUM(` + revenueExpr + `)
		FROM fact_sales f
		JOIN dim_date d ON d.date = f.date
		JOIN dim_customer c ON c.customer_id = f.customer_id
		WHERE c.customer_name = $1 AND ` + inYears + `
		GROUP BY d.year
	`

	rows, err := r.Query(ctx, query, append([]any{customer}, yearArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.YearRevenue
	for rows.Next() {
		var y domain.YearRevenue
		if err := rows.Scan(&y.Year, &y.Revenue); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// MaterialSales ventes groupées par (code article, Group1)
func (r *MetricsQueryRepository) MaterialSales(ctx context.Context, f domain.Filter) ([]domain.MaterialSales, error) {
	query := `
		SELECT m.material_code, m.group1,
		       SUM(` + revenueExpr + `),
		       SUM(` + unitsExpr + `)
	` + factJoins + `
		WHERE ` + filterClause + `
		GROUP BY m.material_code, m.group1
	`

	rows, err := r.Query(ctx, query, filterArgs(f)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MaterialSales
	for rows.Next() {
		var s domain.MaterialSales
		if err := rows.Scan(&s.MaterialCode, &s.Group1, &s.Revenue, &s.Units); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CustomerSales ventes groupées par client (le filtre client est ignoré)
func (r *MetricsQueryRepository) CustomerSales(ctx context.Context, f domain.Filter) ([]domain.CustomerSales, error) {
	f.Customer = ""
	query := `
		SELECT c.customer_name, c.country,
		       SUM(` + revenueExpr + `),
		       SUM(` + unitsExpr + `)
	` + factJoins + `
		WHERE ` + filterClause + `
		GROUP BY c.customer_id, c.customer_name, c.country
	`

	rows, err := r.Query(ctx, query, filterArgs(f)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CustomerSales
	for rows.Next() {
		var s domain.CustomerSales
		if err := rows.Scan(&s.CustomerName, &s.Country, &s.Revenue, &s.Units); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BudgetActual totaux réalisé / budget du périmètre
func (r *MetricsQueryRepository) BudgetActual(ctx context.Context, f domain.Filter) (domain.BudgetActual, error) {
	query := `
		SELECT COALESCE(SUM(` + revenueExpr + `), 0),
		       COALESCE(SUM(COALESCE(f.budget_value, 0)), 0)
	` + factJoins + `
		WHERE ` + filterClause

	var t domain.BudgetActual
	if err := r.QueryRow(ctx, query, filterArgs(f)...).Scan(&t.Actual, &t.Budget); err != nil {
		return domain.BudgetActual{}, fmt.Errorf("scan budget: %w", err)
	}
	return t, nil
}

// ForecastTotals sommes des erreurs sur les lignes ayant une prévision.
// Une ligne au réalisé nul contribue 0 à la somme des erreurs mais reste
// comptée dans COUNT(*), dénominateur du MAPE.
func (r *MetricsQueryRepository) ForecastTotals(ctx context.Context, f domain.Filter) (domain.ForecastTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN x.actual = 0 THEN 0
		                         ELSE ABS(x.actual - x.forecast) / ABS(x.actual) END), 0),
		       COALESCE(SUM(x.actual - x.forecast), 0)
		FROM (
			SELECT ` + revenueExpr + ` AS actual, f.forecast_value AS forecast
		` + factJoins + `
			WHERE f.forecast_value IS NOT NULL AND ` + filterClause + `
		) x
	`

	var t domain.ForecastTotals
	if err := r.QueryRow(ctx, query, filterArgs(f)...).Scan(&t.Rows, &t.SumAPE, &t.Bias); err != nil {
		return domain.ForecastTotals{}, fmt.Errorf("scan forecast: %w", err)
	}
	return t, nil
}
