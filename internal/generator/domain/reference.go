package domain

import (
	"fmt"

	shared "salesinsights/internal/shared/domain"
	warehouse "salesinsights/internal/warehouse/domain"
)

// ========================================
// Catalogues de référence
// ========================================

// ReferenceCustomers retourne la liste fixe des clients (ids 1..16)
func ReferenceCustomers() []warehouse.DimCustomer {
	rows := []struct{ name, country, kam, aam string }{
		{"Atlas Retail Group", "USA", "Priyanka N.", "Kavishka D."},
		{"Harbor & Co.", "UK", "Sahan P.", "Amaya J."},
		{"Bavaria Trading GmbH", "Germany", "Tharindu M.", "Ishara S."},
		{"Emirates Wholesale LLC", "UAE", "Nipun K.", "Ruwangi R."},
		{"Shinoda Distribution", "Japan", "Dilhani W.", "Pasindu L."},
		{"Indus Mercantile", "India", "Chathura G.", "Harini T."},
		{"Colombo Superstores", "Sri Lanka", "Kasun R.", "Dilushi F."},
		{"Saigon Partners", "Vietnam", "Ruchira P.", "Asmika V."},
		{"Blue Ridge Outlets", "USA", "Suresh A.", "Gayani E."},
		{"Crown Markets", "UK", "Heshan C.", "Rasangi D."},
		{"Rhine Retail AG", "Germany", "Dineth M.", "Anushka P."},
		{"Desert Line Traders", "UAE", "Nadun B.", "Nadeesha S."},
		{"Kansai Supply", "Japan", "Yasiru T.", "Sithmi K."},
		{"Deccan Bazaar", "India", "Isuru J.", "Sonali R."},
		{"Lanka Value Mart", "Sri Lanka", "Chalana D.", "Sewwandi H."},
		{"Mekong Commerce", "Vietnam", "Nuwan I.", "Anjana P."},
	}

	customers := make([]warehouse.DimCustomer, len(rows))
	for i, r := range rows {
		customers[i] = warehouse.DimCustomer{
			ID:      warehouse.CustomerID(i + 1),
			Name:    r.name,
			Country: r.country,
			KAM:     r.kam,
			AAM:     r.aam,
		}
	}
	return customers
}

// ReferencePlants retourne la liste fixe des usines (ids 1..8)
func ReferencePlants() []warehouse.DimPlant {
	rows := []struct{ code, name, country, city string }{
		{"SL-CMB-01", "Colombo Main Plant", "Sri Lanka", "Colombo"},
		{"SL-KTN-02", "Katuwana Processing", "Sri Lanka", "Homagama"},
		{"IN-PUN-01", "Pune Assembly", "India", "Pune"},
		{"IN-CHE-02", "Chennai Fabrication", "India", "Chennai"},
		{"AE-DXB-01", "Dubai Hub", "UAE", "Dubai"},
		{"DE-HAM-01", "Hamburg Finishing", "Germany", "Hamburg"},
		{"US-HOU-01", "Houston Distribution", "USA", "Houston"},
		{"UK-MAN-01", "Manchester Packaging", "UK", "Manchester"},
	}

	plants := make([]warehouse.DimPlant, len(rows))
	for i, r := range rows {
		plants[i] = warehouse.DimPlant{
			ID:      warehouse.PlantID(i + 1),
			Code:    r.code,
			Name:    r.name,
			Country: r.country,
			City:    r.city,
		}
	}
	return plants
}

var (
	materialTypes = []string{TypeFinishedGoods, TypeComponents, TypeAccessories}
	group1Tags    = []string{"Premium Line", "Standard Line", "Economy Line"}
	group2Tags    = []string{"Industrial", "Consumer", "Healthcare", "Automotive"}
	group3Tags    = []string{"North", "South", "East", "West"}
	group4Tags    = []string{"Bulk", "Pack", "Single"}
	group5Tags    = []string{"Online", "Retail", "Wholesale"}
)

// BuildMaterials construit `count` articles en cyclant les vocabulaires de groupes.
// Un article sur 7 porte un code article client.
func BuildMaterials(count int) []warehouse.DimMaterial {
	materials := make([]warehouse.DimMaterial, 0, count)
	for i := 1; i <= count; i++ {
		m := warehouse.DimMaterial{
			ID:     warehouse.MaterialID(i),
			Code:   fmt.Sprintf("MAT-%04d", i),
			Type:   materialTypes[i%3],
			Group1: group1Tags[i%3],
			Group2: group2Tags[i%4],
			Group3: group3Tags[i%4],
			Group4: group4Tags[i%3],
			Group5: group5Tags[i%3],
		}
		if i%7 == 0 {
			code := fmt.Sprintf("CUS-MAT-%04d", i)
			m.CustomerMaterial = &code
		}
		materials = append(materials, m)
	}
	return materials
}

// BuildDates construit la dimension date, un jour par ligne, dans l'ordre
func BuildDates(span shared.DateSpan) []warehouse.DimDate {
	days := span.Dates()
	dates := make([]warehouse.DimDate, len(days))
	for i, d := range days {
		dates[i] = warehouse.NewDimDate(d)
	}
	return dates
}

// BuildCatalog assemble le catalogue complet d'un entrepôt de démonstration
func BuildCatalog(span shared.DateSpan, materialCount int) (*warehouse.Catalog, error) {
	return warehouse.NewCatalog(
		BuildDates(span),
		ReferenceCustomers(),
		ReferencePlants(),
		BuildMaterials(materialCount),
	)
}
