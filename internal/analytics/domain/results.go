package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatAsOf formate la date de fraîcheur des données (YYYY-MM-DD)
func FormatAsOf(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format(time.DateOnly)
}

// MonthlyYoYRow comparaison d'un mois entre deux années
type MonthlyYoYRow struct {
	Month    int                 `json:"month"`
	ThisYear decimal.Decimal     `json:"thisYear"`
	LastYear decimal.Decimal     `json:"lastYear"`
	YoY      decimal.NullDecimal `json:"yoy"`
}

// YoYResponse comparaison mensuelle d'un client
type YoYResponse struct {
	Customer string          `json:"customer"`
	ThisYear int             `json:"thisYear"`
	LastYear int             `json:"lastYear"`
	Rows     []MonthlyYoYRow `json:"rows"`
	DataAsOf string          `json:"dataAsOf"`
}

// YoYTotals comparaison des totaux annuels
type YoYTotals struct {
	LastYear decimal.Decimal     `json:"lastYear"`
	ThisYear decimal.Decimal     `json:"thisYear"`
	YoY      decimal.NullDecimal `json:"yoy"`
}

// YoYTotalsResponse comparaison annuelle d'un client
type YoYTotalsResponse struct {
	Customer string    `json:"customer"`
	ThisYear int       `json:"thisYear"`
	LastYear int       `json:"lastYear"`
	Totals   YoYTotals `json:"totals"`
	DataAsOf string    `json:"dataAsOf"`
}

// TopMaterialRow ligne du classement des articles
type TopMaterialRow struct {
	MaterialCode string          `json:"materialCode"`
	Group1       string          `json:"group1"`
	Revenue      decimal.Decimal `json:"revenue"`
	Units        decimal.Decimal `json:"units"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
}

// TopMaterialsResponse classement des articles par chiffre d'affaires
type TopMaterialsResponse struct {
	Customer string           `json:"customer,omitempty"`
	Country  string           `json:"country,omitempty"`
	Year     int              `json:"year"`
	Quarter  int              `json:"quarter,omitempty"`
	TopN     int              `json:"topN"`
	Rows     []TopMaterialRow `json:"rows"`
	DataAsOf string           `json:"dataAsOf"`
}

// BudgetVarianceResponse écart réalisé / budget
type BudgetVarianceResponse struct {
	Customer      string              `json:"customer,omitempty"`
	Country       string              `json:"country,omitempty"`
	Year          int                 `json:"year"`
	Quarter       int                 `json:"quarter,omitempty"`
	Actual        decimal.Decimal     `json:"actual"`
	Budget        decimal.Decimal     `json:"budget"`
	VarianceValue decimal.Decimal     `json:"varianceValue"`
	VariancePct   decimal.NullDecimal `json:"variancePct"`
	DataAsOf      string              `json:"dataAsOf"`
}

// ForecastAccuracyResponse précision des prévisions
type ForecastAccuracyResponse struct {
	Customer string          `json:"customer,omitempty"`
	Country  string          `json:"country,omitempty"`
	Year     int             `json:"year"`
	Quarter  int             `json:"quarter,omitempty"`
	MAPE     decimal.Decimal `json:"mape"`
	Bias     decimal.Decimal `json:"bias"`
	DataAsOf string          `json:"dataAsOf"`
}

// TopCustomerRow ligne du classement des clients
type TopCustomerRow struct {
	CustomerName    string          `json:"customerName"`
	Country         string          `json:"country"`
	Revenue         decimal.Decimal `json:"revenue"`
	Units           decimal.Decimal `json:"units"`
	ContributionPct decimal.Decimal `json:"contributionPct"`
}

// TopCustomersResponse classement des clients par chiffre d'affaires
type TopCustomersResponse struct {
	Country  string           `json:"country,omitempty"`
	Year     int              `json:"year"`
	Quarter  int              `json:"quarter,omitempty"`
	TopN     int              `json:"topN"`
	Rows     []TopCustomerRow `json:"rows"`
	DataAsOf string           `json:"dataAsOf"`
}

// Overview synthèse d'un périmètre: tous les indicateurs en un appel
type Overview struct {
	Customer         string                    `json:"customer,omitempty"`
	Country          string                    `json:"country,omitempty"`
	Year             int                       `json:"year"`
	Quarter          int                       `json:"quarter,omitempty"`
	YoY              *YoYTotalsResponse        `json:"yoy,omitempty"`
	TopMaterials     *TopMaterialsResponse     `json:"topMaterials"`
	TopCustomers     *TopCustomersResponse     `json:"topCustomers"`
	BudgetVariance   *BudgetVarianceResponse   `json:"budgetVariance"`
	ForecastAccuracy *ForecastAccuracyResponse `json:"forecastAccuracy"`
	DataAsOf         string                    `json:"dataAsOf"`
}
