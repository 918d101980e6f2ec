package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/newsclip/newsclip/internal/domain"
)

// ErrArticleNotFound is returned when an article does not exist.
var ErrArticleNotFound = errors.New("article not found")

// ArticleFilter narrows article listings. Zero values mean "no filter".
type ArticleFilter struct {
	VehicleID      string
	SectionID      string
	PublishedAfter *time.Time
	Search         string
}

// ContentRepository handles database operations for captured articles and
// the sections they were discovered under.
type ContentRepository struct {
	db *sqlx.DB
	sq sq.StatementBuilderType
}

// NewContentRepository creates a new content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetOrCreateSection resolves a section by its (vehicle, name) pair, creating
// it when missing.
func (r *ContentRepository) GetOrCreateSection(ctx context.Context, vehicleID, name string) (*domain.Section, error) {
	var section domain.Section

	query := `
		INSERT INTO sections (id, vehicle_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (vehicle_id, name) DO NOTHING
		RETURNING id, vehicle_id, name
	`
	err := r.db.GetContext(ctx, &section, query, uuid.NewString(), vehicleID, name)
	if err == nil {
		return &section, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	// Conflict path: the row already exists.
	err = r.db.GetContext(ctx, &section,
		`SELECT id, vehicle_id, name FROM sections WHERE vehicle_id = $1 AND name = $2`,
		vehicleID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}

	return &section, nil
}

// GetOrCreateArticle inserts an article keyed by (vehicle, url). It reports
// whether a new row was created; on conflict the existing row is loaded into
// article so callers can backfill it.
func (r *ContentRepository) GetOrCreateArticle(ctx context.Context, article *domain.Article) (bool, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CapturedAt.IsZero() {
		article.CapturedAt = time.Now()
	}

	query := `
		INSERT INTO articles (id, vehicle_id, section_id, url, title, subtitle, author, body, published_at, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (vehicle_id, url) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		article.ID, article.VehicleID, article.SectionID, article.URL,
		article.Title, article.Subtitle, article.Author, article.Body,
		article.PublishedAt, article.CapturedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create article: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check article insert: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	existing, err := r.getArticleByURL(ctx, article.VehicleID, article.URL)
	if err != nil {
		return false, err
	}
	*article = *existing

	return false, nil
}

// UpdateArticle persists backfilled fields of an existing article.
func (r *ContentRepository) UpdateArticle(ctx context.Context, article *domain.Article) error {
	query := `
		UPDATE articles
		SET section_id = $1, title = $2, subtitle = $3, author = $4,
		    body = $5, published_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		article.SectionID, article.Title, article.Subtitle, article.Author,
		article.Body, article.PublishedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	return requireAffected(result, nil, fmt.Errorf("%w: %s", ErrArticleNotFound, article.ID))
}

// GetArticle retrieves an article by its ID.
func (r *ContentRepository) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	var article domain.Article
	query := `
		SELECT id, vehicle_id, section_id, url, title, subtitle, author, body, published_at, captured_at
		FROM articles
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &article, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

func (r *ContentRepository) getArticleByURL(ctx context.Context, vehicleID, url string) (*domain.Article, error) {
	var article domain.Article
	query := `
		SELECT id, vehicle_id, section_id, url, title, subtitle, author, body, published_at, captured_at
		FROM articles
		WHERE vehicle_id = $1 AND url = $2
	`

	err := r.db.GetContext(ctx, &article, query, vehicleID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get article by url: %w", err)
	}

	return &article, nil
}

// ListArticles retrieves articles matching the filter, newest captures first.
func (r *ContentRepository) ListArticles(ctx context.Context, filter ArticleFilter, limit, offset int) ([]*domain.Article, error) {
	builder := r.sq.
		Select("id", "vehicle_id", "section_id", "url", "title", "subtitle", "author", "body", "published_at", "captured_at").
		From("articles").
		OrderBy("captured_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	builder = applyArticleFilter(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	var articles []*domain.Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	if articles == nil {
		articles = []*domain.Article{}
	}

	return articles, nil
}

// CountArticles counts articles matching the filter.
func (r *ContentRepository) CountArticles(ctx context.Context, filter ArticleFilter) (int, error) {
	builder := r.sq.Select("COUNT(*)").From("articles")
	builder = applyArticleFilter(builder, filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build article count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}

	return count, nil
}

func applyArticleFilter(builder sq.SelectBuilder, filter ArticleFilter) sq.SelectBuilder {
	if filter.VehicleID != "" {
		builder = builder.Where(sq.Eq{"vehicle_id": filter.VehicleID})
	}
	if filter.SectionID != "" {
		builder = builder.Where(sq.Eq{"section_id": filter.SectionID})
	}
	if filter.PublishedAfter != nil {
		builder = builder.Where(sq.GtOrEq{"published_at": *filter.PublishedAfter})
	}
	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"title": "%" + filter.Search + "%"})
	}
	return builder
}
