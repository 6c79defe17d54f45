package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/fjod/go_cellar/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository reads catalog items from a SQLite database.
type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	GetAllItems(ctx context.Context) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, id string) (domain.CatalogItem, error)
	Close() error
	RunMigrations() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const selectItems = `
	SELECT id, name, description, price, vintage, region, type, in_stock, rating, review_count, image_ref
	FROM catalog_items
`

func (r *Repository) GetAllItems(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, selectItems+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) GetItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	row := r.db.QueryRowContext(ctx, selectItems+" WHERE id = ?", id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, ErrItemNotFound
	}
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return item, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := s.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.Vintage,
		&item.Region,
		&item.Type,
		&item.InStock,
		&item.Rating,
		&item.ReviewCount,
		&item.ImageRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CatalogItem{}, err
	}
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("failed to scan catalog item: %w", err)
	}
	return item, nil
}

// Load reads the whole catalog once and freezes it into a Static catalog.
func Load(ctx context.Context, repo RepoInterface) (*Static, error) {
	items, err := repo.GetAllItems(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("catalog database holds no items")
	}
	return NewStatic(items), nil
}
