package domain

import (
	"time"
)

// Identifiants des dimensions et des faits
type (
	CustomerID int
	PlantID    int
	MaterialID int
	FactID     int64
)

// ========================================
// Dimension Date
// ========================================

// DimDate représente un jour calendaire et ses attributs dérivés.
// La clé naturelle est la date elle-même (minuit UTC).
type DimDate struct {
	Date      time.Time `json:"date"`
	Year      int       `json:"year"`
	Quarter   int       `json:"quarter"`
	Month     int       `json:"month"`
	MonthName string    `json:"monthName"`
	Day       int       `json:"day"`
}

// NewDimDate dérive les attributs calendaires d'une date
func NewDimDate(date time.Time) DimDate {
	y, m, d := date.Date()
	return DimDate{
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Year:      y,
		Quarter:   QuarterOf(int(m)),
		Month:     int(m),
		MonthName: date.Format("Jan"),
		Day:       d,
	}
}

// QuarterOf retourne le trimestre (1..4) d'un mois (1..12)
func QuarterOf(month int) int {
	return (month-1)/3 + 1
}

// IsWeekend indique un samedi ou un dimanche
func (d DimDate) IsWeekend() bool {
	wd := d.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ========================================
// Dimensions Client / Usine / Article
// ========================================

// DimCustomer représente un client et son équipe commerciale
type DimCustomer struct {
	ID      CustomerID `json:"customerId"`
	Name    string     `json:"customerName"`
	Country string     `json:"country"`
	KAM     string     `json:"kam"`
	AAM     string     `json:"aam"`
}

// DimPlant représente un site de production
type DimPlant struct {
	ID      PlantID `json:"plantId"`
	Code    string  `json:"plantCode"`
	Name    string  `json:"plantName"`
	Country string  `json:"country"`
	City    string  `json:"city"`
}

// DimMaterial représente un article et ses groupes de classification
type DimMaterial struct {
	ID               MaterialID `json:"materialId"`
	Code             string     `json:"materialCode"`
	Type             string     `json:"materialType"`
	Group1           string     `json:"group1"`
	Group2           string     `json:"group2"`
	Group3           string     `json:"group3"`
	Group4           string     `json:"group4"`
	Group5           string     `json:"group5"`
	CustomerMaterial *string    `json:"customerMaterial,omitempty"`
}
