package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"wardrobe/internal/domain"
)

var (
	ErrClothingItemNotFound = errors.New("clothing item not found")
)

// ClothingRepository defines the interface for clothing item data access
type ClothingRepository interface {
	Create(ctx context.Context, item *domain.ClothingItem) error
	FindByID(ctx context.Context, id int64) (*domain.ClothingItem, error)
	List(ctx context.Context) ([]*domain.ClothingItem, error)
	Update(ctx context.Context, item *domain.ClothingItem) error
	UpdateLocation(ctx context.Context, id int64, location domain.Location) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]*domain.ClothingItem, error)
}

const clothingColumns = `id, name, category, main_color, secondary_color, image_url, location, count, created_on`

type clothingRepository struct {
	db *sql.DB
}

// NewClothingRepository creates a new instance of ClothingRepository
func NewClothingRepository(db *sql.DB) ClothingRepository {
	return &clothingRepository{db: db}
}

// Create inserts a new item and fills in the generated id and created_on
func (r *clothingRepository) Create(ctx context.Context, item *domain.ClothingItem) error {
	query := `
		INSERT INTO clothing_items (name, category, main_color, secondary_color, image_url, location, count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_on
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		item.Name,
		item.Category,
		item.MainColor,
		item.SecondaryColor,
		item.ImageURL,
		string(item.Location),
		item.Count,
	).Scan(&item.ID, &item.CreatedOn)

	if err != nil {
		return fmt.Errorf("failed to create clothing item: %w", err)
	}

	return nil
}

// FindByID retrieves a clothing item by ID
func (r *clothingRepository) FindByID(ctx context.Context, id int64) (*domain.ClothingItem, error) {
	query := `SELECT ` + clothingColumns + ` FROM clothing_items WHERE id = $1`

	item, err := scanClothingItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClothingItemNotFound
		}
		return nil, fmt.Errorf("failed to find clothing item by ID: %w", err)
	}

	return item, nil
}

// List retrieves every clothing item ordered by id
func (r *clothingRepository) List(ctx context.Context) ([]*domain.ClothingItem, error) {
	query := `SELECT ` + clothingColumns + ` FROM clothing_items ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clothing items: %w", err)
	}
	defer rows.Close()

	return collectClothingItems(rows)
}

// Update replaces the mutable fields of an item. id and created_on are never written.
func (r *clothingRepository) Update(ctx context.Context, item *domain.ClothingItem) error {
	query := `
		UPDATE clothing_items
		SET name = $2, category = $3, main_color = $4, secondary_color = $5,
		    image_url = $6, location = $7, count = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Name,
		item.Category,
		item.MainColor,
		item.SecondaryColor,
		item.ImageURL,
		string(item.Location),
		item.Count,
	)
	if err != nil {
		return fmt.Errorf("failed to update clothing item: %w", err)
	}

	return requireAffected(result)
}

// UpdateLocation moves an item without touching any other column
func (r *clothingRepository) UpdateLocation(ctx context.Context, id int64, location domain.Location) error {
	query := `UPDATE clothing_items SET location = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, string(location))
	if err != nil {
		return fmt.Errorf("failed to move clothing item: %w", err)
	}

	return requireAffected(result)
}

// Delete removes a clothing item from the database
func (r *clothingRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM clothing_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete clothing item: %w", err)
	}

	return requireAffected(result)
}

// Search finds items whose name, category or colours contain query, ignoring case
func (r *clothingRepository) Search(ctx context.Context, query string) ([]*domain.ClothingItem, error) {
	// If query is empty, return all items
	if query == "" {
		return r.List(ctx)
	}

	searchPattern := "%" + escapeLike(query) + "%"

	searchQuery := `SELECT ` + clothingColumns + `
		FROM clothing_items
		WHERE name ILIKE $1 ESCAPE '\'
		   OR category ILIKE $1 ESCAPE '\'
		   OR main_color ILIKE $1 ESCAPE '\'
		   OR secondary_color ILIKE $1 ESCAPE '\'
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search clothing items: %w", err)
	}
	defer rows.Close()

	return collectClothingItems(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClothingItem(row rowScanner) (*domain.ClothingItem, error) {
	item := &domain.ClothingItem{}
	var (
		secondaryColor sql.NullString
		imageURL       sql.NullString
		location       string
	)

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Category,
		&item.MainColor,
		&secondaryColor,
		&imageURL,
		&location,
		&item.Count,
		&item.CreatedOn,
	)
	if err != nil {
		return nil, err
	}

	if secondaryColor.Valid {
		item.SecondaryColor = &secondaryColor.String
	}
	if imageURL.Valid {
		item.ImageURL = &imageURL.String
	}
	item.Location = domain.Location(location)

	return item, nil
}

func collectClothingItems(rows *sql.Rows) ([]*domain.ClothingItem, error) {
	items := []*domain.ClothingItem{}
	for rows.Next() {
		item, err := scanClothingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clothing item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clothing items: %w", err)
	}

	return items, nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClothingItemNotFound
	}

	return nil
}
