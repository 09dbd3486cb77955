package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"GrantScanner/internal/domain"
	"GrantScanner/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const maxPageSize = 100

var opportunityColumns = []string{
	"id", "source", "source_uid", "title", "summary", "programme", "sponsor",
	"topic_codes", "tags", "deadlines", "status", "links",
	"opens_at", "closes_at", "notes",
}

// PostgresRepository persists canonical opportunities into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.OpportunityRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or refreshes one opportunity, keyed by source_uid.
func (r *PostgresRepository) Upsert(ctx context.Context, op domain.Opportunity) error {
	if r.db == nil {
		return nil
	}

	title, err := json.Marshal(op.Title)
	if err != nil {
		return fmt.Errorf("encode title: %w", err)
	}
	summary, err := json.Marshal(op.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	topicCodes, err := json.Marshal(op.TopicCodes)
	if err != nil {
		return fmt.Errorf("encode topic codes: %w", err)
	}
	tags, err := json.Marshal(op.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	deadlines, err := json.Marshal(op.Deadlines)
	if err != nil {
		return fmt.Errorf("encode deadlines: %w", err)
	}
	links, err := json.Marshal(op.Links)
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}

	query := psql.Insert("opportunities").
		Columns(opportunityColumns...).
		Values(op.ID, op.Source, op.SourceUID, title, summary, op.Programme, op.Sponsor,
			topicCodes, tags, deadlines, string(op.Status), links,
			op.OpensAt, op.ClosesAt, op.Notes).
		Suffix(`ON CONFLICT (source_uid) DO UPDATE SET
			id = EXCLUDED.id,
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			programme = EXCLUDED.programme,
			sponsor = EXCLUDED.sponsor,
			topic_codes = EXCLUDED.topic_codes,
			tags = EXCLUDED.tags,
			deadlines = EXCLUDED.deadlines,
			status = EXCLUDED.status,
			links = EXCLUDED.links,
			opens_at = EXCLUDED.opens_at,
			closes_at = EXCLUDED.closes_at,
			notes = EXCLUDED.notes,
			updated_at = NOW()`)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert opportunity: %w", err)
	}
	return nil
}

// SearchFilter narrows and orders a search; zero values mean "no filter".
type SearchFilter struct {
	Q              string
	Status         string
	Sponsor        string
	Programme      string
	Tag            string
	DeadlineBefore string
	DeadlineAfter  string
	Sort           string // deadline_asc, deadline_desc, recent
	Page           int
	PageSize       int
}

// Search applies filters, sorting, and pagination and returns the matching
// page plus the total match count.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]domain.Opportunity, int, error) {
	if r.db == nil {
		return nil, 0, nil
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	base := psql.Select(opportunityColumns...).From("opportunities")
	base = applyFilter(base, filter)

	countQuery := psql.Select("COUNT(*)").From("opportunities")
	countQuery = applyFilter(countQuery, filter)
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count opportunities: %w", err)
	}

	switch filter.Sort {
	case "deadline_asc":
		base = base.OrderBy("closes_at ASC NULLS LAST")
	case "deadline_desc":
		base = base.OrderBy("closes_at DESC NULLS LAST")
	default:
		base = base.OrderBy("id DESC")
	}
	base = base.Offset(uint64((page - 1) * pageSize)).Limit(uint64(pageSize))

	sqlStr, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		op, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return out, total, nil
}

func applyFilter(b sq.SelectBuilder, filter SearchFilter) sq.SelectBuilder {
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Sponsor != "" {
		b = b.Where(sq.Eq{"sponsor": filter.Sponsor})
	}
	if filter.Programme != "" {
		b = b.Where(sq.Eq{"programme": filter.Programme})
	}
	if filter.Tag != "" {
		b = b.Where("LOWER(tags::text) LIKE ?", likeTerm(filter.Tag))
	}
	if filter.DeadlineBefore != "" {
		b = b.Where("closes_at IS NOT NULL AND closes_at <= ?::date", filter.DeadlineBefore)
	}
	if filter.DeadlineAfter != "" {
		b = b.Where("closes_at IS NOT NULL AND closes_at >= ?::date", filter.DeadlineAfter)
	}
	if filter.Q != "" {
		term := likeTerm(filter.Q)
		b = b.Where(sq.Or{
			sq.Expr("LOWER(title->>'en') LIKE ?", term),
			sq.Expr("LOWER(title->>'sv') LIKE ?", term),
			sq.Expr("LOWER(summary->>'en') LIKE ?", term),
			sq.Expr("LOWER(summary->>'sv') LIKE ?", term),
		})
	}
	return b
}

func likeTerm(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func scanOpportunity(rows *sql.Rows) (domain.Opportunity, error) {
	var (
		op                                        domain.Opportunity
		title, summary, topicCodes, tags          []byte
		deadlines, links                          []byte
		programme, sponsor, opens, closes, status sql.NullString
		notes                                     sql.NullString
	)
	if err := rows.Scan(&op.ID, &op.Source, &op.SourceUID, &title, &summary,
		&programme, &sponsor, &topicCodes, &tags, &deadlines, &status, &links,
		&opens, &closes, &notes); err != nil {
		return domain.Opportunity{}, fmt.Errorf("scan opportunity: %w", err)
	}

	if err := json.Unmarshal(title, &op.Title); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode title: %w", err)
	}
	if err := json.Unmarshal(summary, &op.Summary); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode summary: %w", err)
	}
	if err := json.Unmarshal(topicCodes, &op.TopicCodes); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode topic codes: %w", err)
	}
	if err := json.Unmarshal(tags, &op.Tags); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(deadlines, &op.Deadlines); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode deadlines: %w", err)
	}
	if err := json.Unmarshal(links, &op.Links); err != nil {
		return domain.Opportunity{}, fmt.Errorf("decode links: %w", err)
	}

	op.Status = domain.Status(status.String)
	op.Programme = nullable(programme)
	op.Sponsor = nullable(sponsor)
	op.OpensAt = nullable(opens)
	op.ClosesAt = nullable(closes)
	op.Notes = nullable(notes)
	return op, nil
}

func nullable(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

// Facets returns the distinct filter values the search surface exposes.
func (r *PostgresRepository) Facets(ctx context.Context) (map[string][]string, error) {
	if r.db == nil {
		return map[string][]string{}, nil
	}

	facets := map[string][]string{}
	queries := []struct {
		name  string
		query string
	}{
		{"sponsors", `SELECT DISTINCT sponsor FROM opportunities WHERE sponsor IS NOT NULL ORDER BY sponsor`},
		{"programmes", `SELECT DISTINCT programme FROM opportunities WHERE programme IS NOT NULL ORDER BY programme`},
		{"statuses", `SELECT DISTINCT status FROM opportunities ORDER BY status`},
		{"tags", `SELECT DISTINCT jsonb_array_elements_text(tags::jsonb) AS tag FROM opportunities ORDER BY tag`},
	}
	for _, q := range queries {
		values, err := r.queryStrings(ctx, q.query)
		if err != nil {
			return nil, fmt.Errorf("facet %s: %w", q.name, err)
		}
		facets[q.name] = values
	}
	return facets, nil
}

func (r *PostgresRepository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
