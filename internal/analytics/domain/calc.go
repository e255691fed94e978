package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	shared "salesinsights/internal/shared/domain"
)

// YoYRatio calcule (cur - prev) / prev arrondi à 4 décimales, null si prev = 0
func YoYRatio(cur, prev decimal.Decimal) decimal.NullDecimal {
	return shared.Ratio(cur.Sub(prev), prev)
}

// BuildMonthlyYoY produit exactement 12 lignes (janvier à décembre),
// les mois sans données valant 0
func BuildMonthlyYoY(rows []MonthRevenue, thisYear, lastYear int) []MonthlyYoYRow {
	var cur, prev [13]decimal.Decimal
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		switch r.Year {
		case thisYear:
			cur[r.Month] = cur[r.Month].Add(r.Revenue)
		case lastYear:
			prev[r.Month] = prev[r.Month].Add(r.Revenue)
		}
	}

	out := make([]MonthlyYoYRow, 12)
	for m := 1; m <= 12; m++ {
		out[m-1] = MonthlyYoYRow{
			Month:    m,
			ThisYear: shared.RoundMoney(cur[m]),
			LastYear: shared.RoundMoney(prev[m]),
			YoY:      YoYRatio(cur[m], prev[m]),
		}
	}
	return out
}

// BuildYoYTotals agrège les revenus annuels des deux années comparées
func BuildYoYTotals(rows []YearRevenue, thisYear, lastYear int) YoYTotals {
	cur, prev := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Year {
		case thisYear:
			cur = cur.Add(r.Revenue)
		case lastYear:
			prev = prev.Add(r.Revenue)
		}
	}
	return YoYTotals{
		LastYear: shared.RoundMoney(prev),
		ThisYear: shared.RoundMoney(cur),
		YoY:      YoYRatio(cur, prev),
	}
}

// RankMaterials trie par chiffre d'affaires décroissant (égalité: code article
// puis Group1 croissants) et garde les topN premiers groupes
func RankMaterials(rows []MaterialSales, topN int) []TopMaterialRow {
	sorted := make([]MaterialSales, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Revenue.Cmp(sorted[j].Revenue); c != 0 {
			return c > 0
		}
		if sorted[i].MaterialCode != sorted[j].MaterialCode {
			return sorted[i].MaterialCode < sorted[j].MaterialCode
		}
		return sorted[i].Group1 < sorted[j].Group1
	})

	n := min(topN, len(sorted))
	out := make([]TopMaterialRow, n)
	for i, r := range sorted[:n] {
		out[i] = TopMaterialRow{
			MaterialCode: r.MaterialCode,
			Group1:       r.Group1,
			Revenue:      shared.RoundMoney(r.Revenue),
			Units:        shared.RoundQuantity(r.Units),
			AvgPrice:     shared.RoundMoney(shared.RatioOrZero(r.Revenue, r.Units)),
		}
	}
	return out
}

// RankCustomers calcule la contribution de chaque client au total de tous
// les clients retenus, puis garde les topN premiers (égalité: nom croissant)
func RankCustomers(rows []CustomerSales, topN int) []TopCustomerRow {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}

	sorted := make([]CustomerSales, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Revenue.Cmp(sorted[j].Revenue); c != 0 {
			return c > 0
		}
		if sorted[i].CustomerName != sorted[j].CustomerName {
			return sorted[i].CustomerName < sorted[j].CustomerName
		}
		return sorted[i].Country < sorted[j].Country
	})

	n := min(topN, len(sorted))
	out := make([]TopCustomerRow, n)
	for i, r := range sorted[:n] {
		out[i] = TopCustomerRow{
			CustomerName:    r.CustomerName,
			Country:         r.Country,
			Revenue:         shared.RoundMoney(r.Revenue),
			Units:           shared.RoundQuantity(r.Units),
			ContributionPct: shared.RoundRatio(shared.RatioOrZero(r.Revenue, total)),
		}
	}
	return out
}

// BudgetVariance écart réalisé / budget arrondi
type BudgetVariance struct {
	Actual        decimal.Decimal
	Budget        decimal.Decimal
	VarianceValue decimal.Decimal
	VariancePct   decimal.NullDecimal
}

// NewBudgetVariance calcule l'écart; le pourcentage est null si le budget est nul
func NewBudgetVariance(t BudgetActual) BudgetVariance {
	variance := t.Actual.Sub(t.Budget)
	return BudgetVariance{
		Actual:        shared.RoundMoney(t.Actual),
		Budget:        shared.RoundMoney(t.Budget),
		VarianceValue: shared.RoundMoney(variance),
		VariancePct:   shared.Ratio(variance, t.Budget),
	}
}

// ForecastAccuracy MAPE et biais arrondis
type ForecastAccuracy struct {
	MAPE decimal.Decimal
	Bias decimal.Decimal
}

// NewForecastAccuracy calcule MAPE = moyenne des |réalisé - prévu| / réalisé
// (0 sans ligne) et Bias = Σ(réalisé - prévu).
// Les lignes à réalisé nul apportent une erreur de 0 mais restent comptées
// dans t.Rows: le dénominateur est le nombre de lignes avec une prévision.
func NewForecastAccuracy(t ForecastTotals) ForecastAccuracy {
	mape := shared.RatioOrZero(t.SumAPE, decimal.NewFromInt(t.Rows))
	return ForecastAccuracy{
		MAPE: shared.RoundRatio(mape.Abs()),
		Bias: shared.RoundMoney(t.Bias),
	}
}

// AbsolutePercentageError |actual - forecast| / actual, 0 si actual = 0
func AbsolutePercentageError(actual, forecast decimal.Decimal) decimal.Decimal {
	return shared.RatioOrZero(actual.Sub(forecast).Abs(), actual).Abs()
}
