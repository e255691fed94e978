package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor est implémenté par *sql.DB et *sql.Tx
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) *DBUnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Execute exécute une fonction dans une transaction.
// Rollback sur erreur ou panique, commit sinon.
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := uow.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BaseRepository structure de base pour les repositories SQL
type BaseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx retourne une copie du repository liée à une transaction
func (r BaseRepository) WithTx(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// DB retourne la connexion sous-jacente
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// Executor retourne l'exécuteur approprié (DB ou Tx)
func (r *BaseRepository) Executor() Executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r *BaseRepository) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.Executor().QueryContext(ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.Executor().QueryRowContext(ctx, query, args...)
}

// Exec exécute une requête d'écriture
func (r *BaseRepository) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.Executor().ExecContext(ctx, query, args...)
}
