package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema retourne le DDL du schéma en étoile
func Schema() string {
	return schemaSQL
}

// ApplySchema crée les tables et index manquants
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Truncate vide les faits, les dimensions et la trace des lots
func Truncate(ctx context.Context, db *sql.DB) error {
	const stmt = `TRUNCATE TABLE fact_sales, load_batch, dim_date, dim_customer, dim_plant, dim_material`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate warehouse: %w", err)
	}
	return nil
}

// Analyze met à jour les statistiques du planificateur après un chargement
func Analyze(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}
