package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// ========================================
// Tests: Arrondis
// ========================================

func TestRoundQuantity_HalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"1.2345":  "1.235",
		"-1.2345": "-1.235",
		"2.0004":  "2",
		"0.0005":  "0.001",
	}
	for in, want := range cases {
		got := RoundQuantity(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("RoundQuantity(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestRoundMoney_HalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"-1.005": "-1.01",
		"2.675":  "2.68",
		"9.994":  "9.99",
	}
	for in, want := range cases {
		got := RoundMoney(decimal.RequireFromString(in))
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("RoundMoney(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestRatio_NullOnZeroDenominator(t *testing.T) {
	r := Ratio(decimal.NewFromInt(10), decimal.Zero)
	if r.Valid {
		t.Errorf("Ratio avec dénominateur nul devrait être null, got %s", r.Decimal)
	}

	r = Ratio(decimal.NewFromInt(1), decimal.NewFromInt(3))
	if !r.Valid || r.Decimal.String() != "0.3333" {
		t.Errorf("Ratio(1,3) = %v, want 0.3333", r)
	}
}

func TestRatioOrZero(t *testing.T) {
	if got := RatioOrZero(decimal.NewFromInt(5), decimal.Zero); !got.IsZero() {
		t.Errorf("RatioOrZero(5,0) = %s, want 0", got)
	}
	if got := RatioOrZero(decimal.NewFromInt(5), decimal.NewFromInt(2)); got.String() != "2.5" {
		t.Errorf("RatioOrZero(5,2) = %s, want 2.5", got)
	}
}

func TestValueOrZero(t *testing.T) {
	if got := ValueOrZero(decimal.NullDecimal{}); !got.IsZero() {
		t.Errorf("ValueOrZero(null) = %s, want 0", got)
	}
	if got := ValueOrZero(NullQuantity(decimal.RequireFromString("3.14159"))); got.String() != "3.142" {
		t.Errorf("ValueOrZero = %s, want 3.142", got)
	}
}

// ========================================
// Tests: DateSpan
// ========================================

func TestNewDateSpanYearsBack(t *testing.T) {
	today := time.Date(2025, time.March, 15, 13, 45, 0, 0, time.UTC)

	span, err := NewDateSpanYearsBack(1, today)
	if err != nil {
		t.Fatalf("NewDateSpanYearsBack: %v", err)
	}

	wantStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !span.Start().Equal(wantStart) {
		t.Errorf("Start = %s, want %s", span.Start(), wantStart)
	}
	if !span.End().Equal(wantEnd) {
		t.Errorf("End = %s, want %s", span.End(), wantEnd)
	}
	// 2024 bissextile: 366 + 31 + 28 + 14
	if span.Days() != 439 {
		t.Errorf("Days = %d, want 439", span.Days())
	}
	if len(span.Dates()) != span.Days() {
		t.Errorf("len(Dates) = %d, want %d", len(span.Dates()), span.Days())
	}
}

func TestNewDateSpanYearsBack_Invalid(t *testing.T) {
	if _, err := NewDateSpanYearsBack(-1, time.Now()); !errors.Is(err, ErrInvalidDateSpan) {
		t.Errorf("yearsBack négatif: err = %v, want ErrInvalidDateSpan", err)
	}

	// 1er janvier avec yearsBack=0: la période finirait la veille de son début
	jan1 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewDateSpanYearsBack(0, jan1); !errors.Is(err, ErrInvalidDateSpan) {
		t.Errorf("période vide: err = %v, want ErrInvalidDateSpan", err)
	}
}
