package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Drivers database/sql supportés
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// ConnString construit la chaîne de connexion PostgreSQL (format clé=valeur,
// accepté par lib/pq et pgx)
func ConnString(host, port, user, password, name, sslmode string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslmode)
}

// Open ouvre et vérifie un pool de connexions
func Open(ctx context.Context, driver, connStr string) (*sql.DB, error) {
	switch driver {
	case DriverPQ, DriverPGX:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// Pool de connexions
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}
