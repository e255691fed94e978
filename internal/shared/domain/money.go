package domain

import (
	"github.com/shopspring/decimal"
)

// Précision de stockage et de restitution des mesures
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 3
	RatioPlaces    int32 = 4
)

// RoundMoney arrondit un montant à 2 décimales (demi-éloigné de zéro)
//
// decimal.Round de shopspring ajoute ±0.5 au chiffre suivant puis tronque,
// ce qui donne exactement l'arrondi "half away from zero": 1.005 -> 1.01,
// -1.005 -> -1.01.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// NullMoney arrondit puis enveloppe un montant dans une mesure nullable
func NullMoney(amount decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(RoundMoney(amount))
}

// RoundRatio arrondit un ratio (YoY, écart %, MAPE, contribution) à 4 décimales
func RoundRatio(ratio decimal.Decimal) decimal.Decimal {
	return ratio.Round(RatioPlaces)
}

// Ratio calcule num/den arrondi à 4 décimales.
// Retourne une valeur invalide (null) quand le dénominateur est nul.
func Ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if den.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(RoundRatio(num.Div(den)))
}

// RatioOrZero calcule num/den sans arrondi, 0 quand le dénominateur est nul
func RatioOrZero(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
