package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// CategoryRepo reads and writes the flat categories table.  The tree is
// assembled by the catalog package.
type CategoryRepo struct {
	db sqlx.ExtContext
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category and populates its ID.  A nil ParentID
// creates a root.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (parent_id, name) VALUES (?, ?)`, c.ParentID, c.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListAll returns every category ordered by ID.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, parent_id, name FROM categories ORDER BY id`)
	return out, err
}
