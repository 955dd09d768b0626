package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// movieRow mirrors the movies table.  Translations and resolutions are
// stored as comma separated lists.
type movieRow struct {
	model.Movie
	TranslationsCSV string `db:"translations"`
	ResolutionsCSV  string `db:"resolutions"`
}

func (m movieRow) toModel() model.Movie {
	out := m.Movie
	out.Translations = splitList(m.TranslationsCSV)
	out.Resolutions = splitList(m.ResolutionsCSV)
	return out
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MovieRepo manages movies, the people credited on them and their
// category links.
type MovieRepo struct {
	db sqlx.ExtContext
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db sqlx.ExtContext) *MovieRepo { return &MovieRepo{db: db} }

// WithTx returns a copy of the repository bound to tx.
func (r *MovieRepo) WithTx(tx *sqlx.Tx) *MovieRepo { return &MovieRepo{db: tx} }

// Create inserts a movie and populates its ID.  Slugs are unique.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (name, slug, details, release_date, duration_minutes, country, translations, resolutions)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, m.Slug, m.Details, m.ReleaseDate.UTC().Truncate(24*time.Hour), m.DurationMinutes, m.Country,
		strings.Join(m.Translations, ","), strings.Join(m.Resolutions, ","))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID retrieves a movie by ID.  It returns ErrNotFound if there is
// no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, name, slug, details, release_date, duration_minutes, country, translations, resolutions
	           FROM movies WHERE id = ?`
	var row movieRow
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return nil, notFound(err)
	}
	m := row.toModel()
	return &m, nil
}

// AddCategory links a movie to a category.
func (r *MovieRepo) AddCategory(ctx context.Context, movieID, categoryID uint64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO movie_categories (movie_id, category_id) VALUES (?, ?)`, movieID, categoryID)
	return err
}

// CreateWorker inserts a person credited on movies.
func (r *MovieRepo) CreateWorker(ctx context.Context, w *model.Worker) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO workers (name, details, role) VALUES (?, ?, ?)`, w.Name, w.Details, w.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// AddWorker credits a worker on a movie.
func (r *MovieRepo) AddWorker(ctx context.Context, movieID, workerID uint64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO movie_workers (movie_id, worker_id) VALUES (?, ?)`, movieID, workerID)
	return err
}

// ListWorkers returns the workers credited on a movie ordered by ID.
func (r *MovieRepo) ListWorkers(ctx context.Context, movieID uint64) ([]model.Worker, error) {
	const q = `SELECT w.id, w.name, w.details, w.role
	           FROM workers w
	           JOIN movie_workers mw ON mw.worker_id = w.id
	           WHERE mw.movie_id = ?
	           ORDER BY w.id`
	var out []model.Worker
	err := sqlx.SelectContext(ctx, r.db, &out, q, movieID)
	return out, err
}

// CategoryIDs returns the category IDs of a movie in ascending order.
func (r *MovieRepo) CategoryIDs(ctx context.Context, movieID uint64) ([]uint64, error) {
	var out []uint64
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT category_id FROM movie_categories WHERE movie_id = ? ORDER BY category_id`, movieID)
	return out, err
}
