package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"salesinsights/database"
	sharedinfra "salesinsights/internal/shared/infrastructure"
	"salesinsights/internal/warehouse/domain"
)

// maxParams borne le nombre de paramètres d'un INSERT multi-lignes
// (PostgreSQL limite à 65535)
const maxParams = 60_000

var factColumns = []string{
	"id", "date", "customer_id", "plant_id", "material_id",
	"net_qty", "net_selling_price", "confirmed_qty", "confirmed_value",
	"budget_qty", "budget_value", "forecast_qty", "forecast_value",
}

// PostgresWriter chemin d'écriture de l'entrepôt PostgreSQL.
// Avec lib/pq les faits sont chargés par COPY, avec pgx par INSERT multi-lignes.
type PostgresWriter struct {
	sharedinfra.BaseRepository
	uow    *sharedinfra.DBUnitOfWork
	driver string
	now    func() time.Time
}

// NewPostgresWriter crée le writer pour un driver database/sql donné
func NewPostgresWriter(db *sql.DB, driver string) *PostgresWriter {
	return &PostgresWriter{
		BaseRepository: sharedinfra.NewBaseRepository(db),
		uow:            sharedinfra.NewUnitOfWork(db),
		driver:         driver,
		now:            time.Now,
	}
}

// Prepare applique le schéma puis vérifie qu'il est vide (ou le vide si reset)
func (w *PostgresWriter) Prepare(ctx context.Context, reset bool) error {
	if err := database.ApplySchema(ctx, w.DB()); err != nil {
		return err
	}
	if reset {
		return database.Truncate(ctx, w.DB())
	}

	var seeded bool
	err := w.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM dim_date)
		    OR EXISTS (SELECT 1 FROM dim_customer)
		    OR EXISTS (SELECT 1 FROM fact_sales)
	`).Scan(&seeded)
	if err != nil {
		return fmt.Errorf("check warehouse content: %w", err)
	}
	if seeded {
		return domain.ErrAlreadySeeded
	}
	return nil
}

// InsertDimensions insère les quatre dimensions dans une seule transaction
func (w *PostgresWriter) InsertDimensions(ctx context.Context, catalog *domain.Catalog) error {
	return w.uow.Execute(ctx, func(tx *sql.Tx) error {
		err := insertRows(ctx, tx, "dim_date",
			[]string{"date", "year", "quarter", "month", "month_name", "day"},
			len(catalog.Dates), func(i int) []any {
				d := catalog.Dates[i]
				return []any{d.Date, d.Year, d.Quarter, d.Month, d.MonthName, d.Day}
			})
		if err != nil {
			return err
		}

		err = insertRows(ctx, tx, "dim_customer",
			[]string{"customer_id", "customer_name", "country", "kam", "aam"},
			len(catalog.Customers), func(i int) []any {
				c := catalog.Customers[i]
				return []any{int(c.ID), c.Name, c.Country, c.KAM, c.AAM}
			})
		if err != nil {
			return err
		}

		err = insertRows(ctx, tx, "dim_plant",
			[]string{"plant_id", "plant_code", "plant_name", "country", "city"},
			len(catalog.Plants), func(i int) []any {
				p := catalog.Plants[i]
				return []any{int(p.ID), p.Code, p.Name, p.Country, p.City}
			})
		if err != nil {
			return err
		}

		return insertRows(ctx, tx, "dim_material",
			[]string{"material_id", "material_code", "material_type",
				"group1", "group2", "group3", "group4", "group5", "customer_material"},
			len(catalog.Materials), func(i int) []any {
				m := catalog.Materials[i]
				return []any{int(m.ID), m.Code, m.Type,
					m.Group1, m.Group2, m.Group3, m.Group4, m.Group5, m.CustomerMaterial}
			})
	})
}

// InsertFacts charge un lot et sa trace load_batch dans une transaction
func (w *PostgresWriter) InsertFacts(ctx context.Context, batch domain.FactBatch) error {
	return w.uow.Execute(ctx, func(tx *sql.Tx) error {
		var err error
		if w.driver == database.DriverPQ {
			err = copyFacts(ctx, tx, batch.Rows)
		} else {
			err = insertRows(ctx, tx, "fact_sales", factColumns, len(batch.Rows), func(i int) []any {
				return factValues(batch.Rows[i])
			})
		}
		if err != nil {
			return err
		}

		rec := domain.NewBatchRecord(batch, w.now())
		_, err = tx.ExecContext(ctx, `
			INSERT INTO load_batch (run_id, seq, row_count, first_fact_id, last_fact_id, loaded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, rec.RunID, rec.Seq, rec.RowCount, int64(rec.FirstFactID), int64(rec.LastFactID), rec.LoadedAt)
		if err != nil {
			return fmt.Errorf("insert load_batch: %w", err)
		}
		return nil
	})
}

// Batches retourne la trace des lots d'un run
func (w *PostgresWriter) Batches(ctx context.Context, runID string) ([]domain.BatchRecord, error) {
	rows, err := w.Query(ctx, `
		SELECT run_id, seq, row_count, first_fact_id, last_fact_id, loaded_at
		FROM load_batch
		WHERE run_id = $1
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query load_batch: %w", err)
	}
	defer rows.Close()

	var records []domain.BatchRecord
	for rows.Next() {
		var rec domain.BatchRecord
		var first, last int64
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.RowCount, &first, &last, &rec.LoadedAt); err != nil {
			return nil, err
		}
		rec.FirstFactID, rec.LastFactID = domain.FactID(first), domain.FactID(last)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func factValues(f domain.FactSales) []any {
	return []any{
		int64(f.ID), f.Date.Format(time.DateOnly), int(f.CustomerID), int(f.PlantID), int(f.MaterialID),
		f.NetQty, f.NetSellingPrice, f.ConfirmedQty, f.ConfirmedValue,
		f.BudgetQty, f.BudgetValue, f.ForecastQty, f.ForecastValue,
	}
}

// copyFacts charge les faits via COPY FROM STDIN (lib/pq)
func copyFacts(ctx context.Context, tx *sql.Tx, facts []domain.FactSales) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("fact_sales", factColumns...))
	if err != nil {
		return fmt.Errorf("prepare copy fact_sales: %w", err)
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, factValues(f)...); err != nil {
			return fmt.Errorf("copy fact %d: %w", f.ID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy fact_sales: %w", err)
	}
	return nil
}

// insertRows insère n lignes par INSERT multi-lignes, découpées sous maxParams
func insertRows(ctx context.Context, exec sharedinfra.Executor, table string, columns []string, n int, row func(i int) []any) error {
	if n == 0 {
		return nil
	}
	chunk := max(1, maxParams/len(columns))

	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)

		var sb strings.Builder
		sb.WriteString("INSERT INTO ")
		sb.WriteString(table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(columns, ", "))
		sb.WriteString(") VALUES ")

		args := make([]any, 0, (end-start)*len(columns))
		for i := start; i < end; i++ {
			if i > start {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for c := range columns {
				if c > 0 {
					sb.WriteString(", ")
				}
				sb.WriteByte('$')
				sb.WriteString(strconv.Itoa(len(args) + c + 1))
			}
			sb.WriteByte(')')
			args = append(args, row(i)...)
		}

		if _, err := exec.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert %s rows %d-%d: %w", table, start+1, end, err)
		}
	}
	return nil
}
