package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mindvault-app/mindvault/internal/domain"
	"github.com/mindvault-app/mindvault/internal/service"
)

const itemColumns = `id, title, content, type, tags, source_url, summary, created_at, updated_at`

// keywordFallbackLimit caps candidates returned by the keyword search path.
const keywordFallbackLimit = 5

type KnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{pool: pool}
}

func (r *KnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_items (id, title, content, type, tags, source_url, summary, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		k.ID, k.Title, k.Content, k.Type, k.Tags, nullableString(k.SourceURL), nullableString(k.Summary), k.CreatedAt, k.UpdatedAt,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM knowledge_items WHERE id = $1`,
		id,
	)
	k, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return k, nil
}

func (r *KnowledgeRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.KnowledgeItem, error) {
	if len(ids) == 0 {
		return []*domain.KnowledgeItem{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM knowledge_items WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItemRows(rows)
}

// List returns one page of items matching the input's filters, together with
// the total match count.
func (r *KnowledgeRepository) List(ctx context.Context, input service.ListItemsInput) (*service.ListItemsOutput, error) {
	where := ""
	args := []interface{}{}

	addClause := func(clause string, arg interface{}) {
		args = append(args, arg)
		prefix := " AND "
		if where == "" {
			prefix = " WHERE "
		}
		where += prefix + fmt.Sprintf(clause, len(args))
	}

	if input.Search != "" {
		addClause(`(title ILIKE '%%' || $%d || '%%' OR content ILIKE '%%' || $%[1]d || '%%' OR summary ILIKE '%%' || $%[1]d || '%%')`, input.Search)
	}
	if input.Type != "" {
		addClause(`type = $%d`, input.Type)
	}
	if len(input.Tags) > 0 {
		addClause(`tags @> $%d`, input.Tags)
	}

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_items`+where, args...).Scan(&count); err != nil {
		return nil, err
	}

	orderBy, err := sortClause(input.SortBy, input.SortOrder)
	if err != nil {
		return nil, err
	}

	offset := (input.Page - 1) * input.Limit
	args = append(args, input.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM knowledge_items%s %s LIMIT $%d OFFSET $%d`,
		itemColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanItemRows(rows)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if count > 0 {
		totalPages = (count + input.Limit - 1) / input.Limit
	}

	return &service.ListItemsOutput{
		Items:      items,
		Count:      count,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

func (r *KnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeItem) error {
	k.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_items SET title = $1, content = $2, type = $3, tags = $4, source_url = $5, summary = $6, updated_at = $7
		 WHERE id = $8`,
		k.Title, k.Content, k.Type, k.Tags, nullableString(k.SourceURL), nullableString(k.Summary), k.UpdatedAt, k.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM knowledge_items WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateEmbedding stores the item's vector. The vector column is written
// separately from the structured columns, after the row exists.
func (r *KnowledgeRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_items SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// NearestNeighbors returns the limit items closest to the query vector by
// cosine distance, reduced to the projection answer synthesis needs. Items
// without a stored vector never match. excludeID, when non-empty, drops one
// item (used for "similar to this item" lookups).
func (r *KnowledgeRepository) NearestNeighbors(ctx context.Context, embedding []float32, limit int, excludeID string) ([]*service.Candidate, error) {
	vec := pgvector.NewVector(embedding)

	query := `
		SELECT id, title, content, summary
		FROM knowledge_items
		WHERE embedding IS NOT NULL`
	args := []interface{}{vec}

	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*service.Candidate, 0, limit)
	for rows.Next() {
		var c service.Candidate
		var summary *string
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &summary); err != nil {
			return nil, err
		}
		if summary != nil {
			c.Summary = *summary
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}

// SimilarByEmbedding returns full items ranked by descending cosine
// similarity (1 - distance) to the query vector.
func (r *KnowledgeRepository) SimilarByEmbedding(ctx context.Context, embedding []float32, limit int, excludeID string) ([]*service.SimilarItem, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+`, 1 - (embedding <=> $1) AS similarity
		 FROM knowledge_items
		 WHERE id != $2 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, excludeID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*service.SimilarItem, 0, limit)
	for rows.Next() {
		var k domain.KnowledgeItem
		var sourceURL, summary *string
		var similarity float64
		if err := rows.Scan(&k.ID, &k.Title, &k.Content, &k.Type, &k.Tags, &sourceURL, &summary, &k.CreatedAt, &k.UpdatedAt, &similarity); err != nil {
			return nil, err
		}
		if sourceURL != nil {
			k.SourceURL = *sourceURL
		}
		if summary != nil {
			k.Summary = *summary
		}
		results = append(results, &service.SimilarItem{Item: &k, Similarity: similarity})
	}
	return results, rows.Err()
}

// KeywordSearch is the retrieval fallback when no query vector is available:
// case-insensitive substring match over title and content.
func (r *KnowledgeRepository) KeywordSearch(ctx context.Context, term string) ([]*service.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, content, summary
		 FROM knowledge_items
		 WHERE title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%'
		 LIMIT $2`,
		term, keywordFallbackLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*service.Candidate, 0, keywordFallbackLimit)
	for rows.Next() {
		var c service.Candidate
		var summary *string
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &summary); err != nil {
			return nil, err
		}
		if summary != nil {
			c.Summary = *summary
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}

func sortClause(field domain.SortField, order domain.SortOrder) (string, error) {
	var column string
	switch field {
	case domain.SortFieldCreatedAt:
		column = "created_at"
	case domain.SortFieldUpdatedAt:
		column = "updated_at"
	case domain.SortFieldTitle:
		column = "title"
	default:
		return "", domain.ErrInvalidSortField
	}

	direction := "DESC"
	if order == domain.SortOrderAsc {
		direction = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s", column, direction), nil
}

func scanItem(row pgx.Row) (*domain.KnowledgeItem, error) {
	var k domain.KnowledgeItem
	var sourceURL, summary *string
	if err := row.Scan(&k.ID, &k.Title, &k.Content, &k.Type, &k.Tags, &sourceURL, &summary, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	if sourceURL != nil {
		k.SourceURL = *sourceURL
	}
	if summary != nil {
		k.Summary = *summary
	}
	return &k, nil
}

func scanItemRows(rows pgx.Rows) ([]*domain.KnowledgeItem, error) {
	var results []*domain.KnowledgeItem
	for rows.Next() {
		var k domain.KnowledgeItem
		var sourceURL, summary *string
		if err := rows.Scan(&k.ID, &k.Title, &k.Content, &k.Type, &k.Tags, &sourceURL, &summary, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		if sourceURL != nil {
			k.SourceURL = *sourceURL
		}
		if summary != nil {
			k.Summary = *summary
		}
		results = append(results, &k)
	}
	return results, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
