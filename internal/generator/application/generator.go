package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	gendomain "salesinsights/internal/generator/domain"
	shared "salesinsights/internal/shared/domain"
	warehouse "salesinsights/internal/warehouse/domain"
)

var (
	qtyNoise       = decimal.RequireFromString("0.35")
	budgetNoise    = decimal.RequireFromString("0.25")
	forecastNoise  = decimal.RequireFromString("0.20")
	budgetFactor   = decimal.RequireFromString("1.05")
	forecastFactor = decimal.RequireFromString("1.02")
	minQty         = decimal.NewFromInt(1)
)

// perDayWindow nombre de jours générés en parallèle avant émission, par worker
const perDayWindow = 8

// EmitFunc reçoit les lots de faits dans l'ordre de génération.
// Le slice appartient ensuite à l'appelé.
type EmitFunc func(rows []warehouse.FactSales) error

// Generator produit les faits de vente d'un catalogue
type Generator struct {
	catalog *warehouse.Catalog
	cfg     Config
}

// NewGenerator crée un générateur pour un catalogue
func NewGenerator(catalog *warehouse.Catalog, cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidConfig)
	}
	if len(catalog.Customers) == 0 || len(catalog.Plants) == 0 || len(catalog.Materials) == 0 {
		return nil, fmt.Errorf("%w: catalog needs customers, plants and materials", ErrInvalidConfig)
	}
	return &Generator{catalog: catalog, cfg: cfg}, nil
}

// Stream génère tous les faits et les émet par lots de BatchSize lignes
// (le dernier lot peut être plus petit). Les ids sont attribués à l'émission,
// à partir de 1, dans l'ordre de génération.
func (g *Generator) Stream(ctx context.Context, emit EmitFunc) error {
	b := &batcher{size: g.cfg.BatchSize, emit: emit}

	var err error
	if g.cfg.Mode == ModePerDay {
		err = g.streamPerDay(ctx, b)
	} else {
		err = g.streamSequential(ctx, b)
	}
	if err != nil {
		return err
	}
	return b.flush()
}

// Generate retourne tous les faits en mémoire
func (g *Generator) Generate(ctx context.Context) ([]warehouse.FactSales, error) {
	var all []warehouse.FactSales
	err := g.Stream(ctx, func(rows []warehouse.FactSales) error {
		all = append(all, rows...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (g *Generator) streamSequential(ctx context.Context, b *batcher) error {
	stream := NewRandomStream(g.cfg.Seed)
	for _, day := range g.catalog.Dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.add(g.generateDay(stream, day)); err != nil {
			return err
		}
	}
	return nil
}

// streamPerDay génère des fenêtres de jours en parallèle puis les émet dans l'ordre
func (g *Generator) streamPerDay(ctx context.Context, b *batcher) error {
	dates := g.catalog.Dates
	window := g.cfg.Workers * perDayWindow

	for start := 0; start < len(dates); start += window {
		end := min(start+window, len(dates))
		days := make([][]warehouse.FactSales, end-start)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.cfg.Workers)
		for i := start; i < end; i++ {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				day := dates[i]
				days[i-start] = g.generateDay(DayStream(g.cfg.Seed, day.Date), day)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		for _, rows := range days {
			if err := b.add(rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// generateDay tire les clients, puis les usines, puis les articles du jour
// et produit une ligne par triplet retenu. Les ids ne sont pas attribués.
func (g *Generator) generateDay(stream *RandomStream, day warehouse.DimDate) []warehouse.FactSales {
	customers := stream.Pick(len(g.catalog.Customers), g.cfg.CustomersPerDay)
	plants := stream.Pick(len(g.catalog.Plants), g.cfg.PlantsPerDay)
	materials := stream.Pick(len(g.catalog.Materials), g.cfg.MaterialsPerDay)

	seasonal := gendomain.Seasonality(day.Date)
	rows := make([]warehouse.FactSales, 0, len(customers)*len(plants)*len(materials))

	for _, ci := range customers {
		customer := g.catalog.Customers[ci]
		demand := seasonal.Mul(gendomain.CountryDemandFactor(customer.Country))

		for _, pi := range plants {
			plant := g.catalog.Plants[pi]

			for _, mi := range materials {
				material := g.catalog.Materials[mi]

				qty := stream.Jitter(gendomain.BaseQuantity(material).Mul(demand), qtyNoise)
				if qty.LessThan(minQty) {
					continue
				}

				price := gendomain.BasePrice(material)
				budgetQty := stream.Jitter(qty.Mul(budgetFactor), budgetNoise)
				forecastQty := stream.Jitter(qty.Mul(forecastFactor), forecastNoise)

				rows = append(rows, warehouse.FactSales{
					Date:            day.Date,
					CustomerID:      customer.ID,
					PlantID:         plant.ID,
					MaterialID:      material.ID,
					NetQty:          shared.NullQuantity(qty),
					NetSellingPrice: shared.NullMoney(price),
					ConfirmedQty:    shared.NullQuantity(qty),
					ConfirmedValue:  shared.NullMoney(qty.Mul(price)),
					BudgetQty:       shared.NullQuantity(budgetQty),
					BudgetValue:     shared.NullMoney(budgetQty.Mul(price)),
					ForecastQty:     shared.NullQuantity(forecastQty),
					ForecastValue:   shared.NullMoney(forecastQty.Mul(price)),
				})
			}
		}
	}
	return rows
}

// batcher découpe le flux de lignes en lots de taille fixe et attribue les ids
type batcher struct {
	size   int
	emit   EmitFunc
	buf    []warehouse.FactSales
	nextID warehouse.FactID
}

func (b *batcher) add(rows []warehouse.FactSales) error {
	for _, row := range rows {
		if b.buf == nil {
			b.buf = make([]warehouse.FactSales, 0, b.size)
		}
		b.nextID++
		row.ID = b.nextID
		b.buf = append(b.buf, row)

		if len(b.buf) == b.size {
			if err := b.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *batcher) flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	rows := b.buf
	b.buf = nil
	return b.emit(rows)
}
