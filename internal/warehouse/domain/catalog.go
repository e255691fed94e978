package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownReference est retournée quand un fait référence une dimension absente
	ErrUnknownReference = errors.New("unknown dimension reference")
	// ErrDuplicateKey est retournée quand une clé de dimension est dupliquée
	ErrDuplicateKey = errors.New("duplicate dimension key")
	// ErrAlreadySeeded est retournée quand l'entrepôt contient déjà des données
	ErrAlreadySeeded = errors.New("warehouse already seeded")
)

// Catalog regroupe les dimensions d'un entrepôt et indexe leurs clés.
// Il est immuable une fois construit.
type Catalog struct {
	Dates     []DimDate
	Customers []DimCustomer
	Plants    []DimPlant
	Materials []DimMaterial

	dateIndex     map[string]int
	customerIndex map[CustomerID]int
	plantIndex    map[PlantID]int
	materialIndex map[MaterialID]int
}

// NewCatalog valide l'unicité des clés (id et clés naturelles) et indexe les dimensions
func NewCatalog(dates []DimDate, customers []DimCustomer, plants []DimPlant, materials []DimMaterial) (*Catalog, error) {
	c := &Catalog{
		Dates:         dates,
		Customers:     customers,
		Plants:        plants,
		Materials:     materials,
		dateIndex:     make(map[string]int, len(dates)),
		customerIndex: make(map[CustomerID]int, len(customers)),
		plantIndex:    make(map[PlantID]int, len(plants)),
		materialIndex: make(map[MaterialID]int, len(materials)),
	}

	for i, d := range dates {
		key := dateKey(d.Date)
		if _, exists := c.dateIndex[key]; exists {
			return nil, fmt.Errorf("%w: date %s", ErrDuplicateKey, key)
		}
		c.dateIndex[key] = i
	}

	names := make(map[string]struct{}, len(customers))
	for i, cu := range customers {
		if _, exists := c.customerIndex[cu.ID]; exists {
			return nil, fmt.Errorf("%w: customer id %d", ErrDuplicateKey, cu.ID)
		}
		if _, exists := names[cu.Name]; exists {
			return nil, fmt.Errorf("%w: customer name %q", ErrDuplicateKey, cu.Name)
		}
		names[cu.Name] = struct{}{}
		c.customerIndex[cu.ID] = i
	}

	codes := make(map[string]struct{}, len(plants))
	for i, p := range plants {
		if _, exists := c.plantIndex[p.ID]; exists {
			return nil, fmt.Errorf("%w: plant id %d", ErrDuplicateKey, p.ID)
		}
		if _, exists := codes[p.Code]; exists {
			return nil, fmt.Errorf("%w: plant code %q", ErrDuplicateKey, p.Code)
		}
		codes[p.Code] = struct{}{}
		c.plantIndex[p.ID] = i
	}

	codes = make(map[string]struct{}, len(materials))
	for i, m := range materials {
		if _, exists := c.materialIndex[m.ID]; exists {
			return nil, fmt.Errorf("%w: material id %d", ErrDuplicateKey, m.ID)
		}
		if _, exists := codes[m.Code]; exists {
			return nil, fmt.Errorf("%w: material code %q", ErrDuplicateKey, m.Code)
		}
		codes[m.Code] = struct{}{}
		c.materialIndex[m.ID] = i
	}

	return c, nil
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateOf retourne la dimension date d'un jour
func (c *Catalog) DateOf(t time.Time) (DimDate, bool) {
	i, ok := c.dateIndex[dateKey(t)]
	if !ok {
		return DimDate{}, false
	}
	return c.Dates[i], true
}

// Customer retourne un client par id
func (c *Catalog) Customer(id CustomerID) (DimCustomer, bool) {
	i, ok := c.customerIndex[id]
	if !ok {
		return DimCustomer{}, false
	}
	return c.Customers[i], true
}

// Plant retourne une usine par id
func (c *Catalog) Plant(id PlantID) (DimPlant, bool) {
	i, ok := c.plantIndex[id]
	if !ok {
		return DimPlant{}, false
	}
	return c.Plants[i], true
}

// Material retourne un article par id
func (c *Catalog) Material(id MaterialID) (DimMaterial, bool) {
	i, ok := c.materialIndex[id]
	if !ok {
		return DimMaterial{}, false
	}
	return c.Materials[i], true
}

// Validate vérifie que toutes les références d'un fait existent
func (c *Catalog) Validate(f FactSales) error {
	if _, ok := c.DateOf(f.Date); !ok {
		return fmt.Errorf("%w: fact %d date %s", ErrUnknownReference, f.ID, dateKey(f.Date))
	}
	if _, ok := c.customerIndex[f.CustomerID]; !ok {
		return fmt.Errorf("%w: fact %d customer %d", ErrUnknownReference, f.ID, f.CustomerID)
	}
	if _, ok := c.plantIndex[f.PlantID]; !ok {
		return fmt.Errorf("%w: fact %d plant %d", ErrUnknownReference, f.ID, f.PlantID)
	}
	if _, ok := c.materialIndex[f.MaterialID]; !ok {
		return fmt.Errorf("%w: fact %d material %d", ErrUnknownReference, f.ID, f.MaterialID)
	}
	return nil
}

// Empty indique un catalogue sans aucune dimension
func (c *Catalog) Empty() bool {
	return c == nil || (len(c.Dates) == 0 && len(c.Customers) == 0 &&
		len(c.Plants) == 0 && len(c.Materials) == 0)
}
