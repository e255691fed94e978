package domain

import (
	"github.com/shopspring/decimal"
)

// RoundQuantity arrondit une quantité à 3 décimales (demi-éloigné de zéro)
func RoundQuantity(qty decimal.Decimal) decimal.Decimal {
	return qty.Round(QuantityPlaces)
}

// NullQuantity arrondit puis enveloppe une quantité dans une mesure nullable
func NullQuantity(qty decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(RoundQuantity(qty))
}

// ValueOrZero retourne la valeur d'une mesure nullable, ou zéro
func ValueOrZero(m decimal.NullDecimal) decimal.Decimal {
	if !m.Valid {
		return decimal.Zero
	}
	return m.Decimal
}
