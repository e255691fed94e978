package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	warehouse "salesinsights/internal/warehouse/domain"
)

// ========================================
// Modèle de demande saisonnière
// ========================================
// Fonctions pures: aucune dépendance à l'état, entièrement déterministes.

var (
	quarterFactors = map[int]decimal.Decimal{
		1: decimal.RequireFromString("0.92"),
		2: decimal.RequireFromString("1.00"),
		3: decimal.RequireFromString("1.05"),
		4: decimal.RequireFromString("1.12"),
	}

	countryFactors = map[string]decimal.Decimal{
		"USA":       decimal.RequireFromString("1.20"),
		"Germany":   decimal.RequireFromString("1.10"),
		"UK":        decimal.RequireFromString("1.05"),
		"UAE":       decimal.RequireFromString("1.00"),
		"India":     decimal.RequireFromString("1.15"),
		"Sri Lanka": decimal.RequireFromString("0.95"),
		"Vietnam":   decimal.RequireFromString("1.00"),
		"Japan":     decimal.RequireFromString("1.05"),
	}

	weekendFactor = decimal.RequireFromString("0.6")
	waveBase      = decimal.RequireFromString("0.95")

	premiumQtyFactor   = decimal.RequireFromString("0.6")
	economyQtyFactor   = decimal.RequireFromString("1.2")
	premiumPriceFactor = decimal.RequireFromString("1.6")
	economyPriceFactor = decimal.RequireFromString("0.75")
)

// Types d'articles connus
const (
	TypeFinishedGoods = "Finished Goods"
	TypeComponents    = "Components"
	TypeAccessories   = "Accessories"
)

// Seasonality retourne le multiplicateur de demande d'un jour:
// facteur trimestriel × vague mensuelle × 0.6 le week-end
func Seasonality(date time.Time) decimal.Decimal {
	month := int(date.Month())
	q := quarterFactors[warehouse.QuarterOf(month)]

	wave := 0.1 * math.Sin(float64(month)/12.0*2*math.Pi)
	factor := q.Mul(waveBase.Add(decimal.NewFromFloat(wave)))

	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		factor = factor.Mul(weekendFactor)
	}
	return factor
}

// CountryDemandFactor retourne le facteur de demande d'un pays (1.00 si inconnu)
func CountryDemandFactor(country string) decimal.Decimal {
	if f, ok := countryFactors[country]; ok {
		return f
	}
	return decimal.NewFromInt(1)
}

// BaseQuantity retourne la quantité de base d'un article selon son type et sa gamme
func BaseQuantity(m warehouse.DimMaterial) decimal.Decimal {
	var qty decimal.Decimal
	switch m.Type {
	case TypeFinishedGoods:
		qty = decimal.NewFromInt(120)
	case TypeComponents:
		qty = decimal.NewFromInt(60)
	default:
		qty = decimal.NewFromInt(40)
	}
	return applyTier(qty, m.Group1, premiumQtyFactor, economyQtyFactor)
}

// BasePrice retourne le prix unitaire de base d'un article selon son type et sa gamme
func BasePrice(m warehouse.DimMaterial) decimal.Decimal {
	var price decimal.Decimal
	switch m.Type {
	case TypeFinishedGoods:
		price = decimal.NewFromInt(25)
	case TypeComponents:
		price = decimal.NewFromInt(12)
	default:
		price = decimal.NewFromInt(8)
	}
	return applyTier(price, m.Group1, premiumPriceFactor, economyPriceFactor)
}

func applyTier(v decimal.Decimal, group1 string, premium, economy decimal.Decimal) decimal.Decimal {
	if strings.Contains(group1, "Premium") {
		v = v.Mul(premium)
	}
	if strings.Contains(group1, "Economy") {
		v = v.Mul(economy)
	}
	return v
}
