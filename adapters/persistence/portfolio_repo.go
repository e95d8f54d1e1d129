package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type postgresPortfolioRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPortfolioRepo(db *pgxpool.Pool, log logger.Logger) portfolio.Repository {
	return &postgresPortfolioRepo{db: db, logger: log}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const portfolioColumns = "id, username, portfolio_data, url, is_published, views, metadata, idempotency_key, created_at, updated_at"

func scanPortfolio(row pgx.Row) (*portfolio.Record, error) {
	r := &portfolio.Record{}
	var dataBytes, metadataBytes []byte
	var idempotencyKey sql.NullString

	err := row.Scan(
		&r.ID,
		&r.Username,
		&dataBytes,
		&r.URL,
		&r.IsPublished,
		&r.Views,
		&metadataBytes,
		&idempotencyKey,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, portfolio.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
	}

	if err := json.Unmarshal(dataBytes, &r.PortfolioData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio_data of %s: %w", r.Username, err)
	}
	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", r.Username, err)
		}
	}
	r.IdempotencyKey = idempotencyKey.String
	return r, nil
}

func encodePortfolio(r *portfolio.Record) (data, metadata []byte, err error) {
	if data, err = json.Marshal(r.PortfolioData); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal portfolio_data: %w", err)
	}
	if metadata, err = json.Marshal(r.Metadata); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal portfolio metadata: %w", err)
	}
	return data, metadata, nil
}

func (r *postgresPortfolioRepo) Save(ctx context.Context, p *portfolio.Record) error {
	data, metadata, err := encodePortfolio(p)
	if err != nil {
		return err
	}

	var idempotencyKey *string
	if p.IdempotencyKey != "" {
		idempotencyKey = &p.IdempotencyKey
	}

	query := `
		INSERT INTO portfolios (id, username, portfolio_data, url, is_published, views, metadata, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.Username, data, p.URL, p.IsPublished, p.Views, metadata, idempotencyKey, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return portfolio.ErrUsernameTaken
		}
		r.logger.Error("Failed to save portfolio", err, zap.String("username", p.Username))
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

func (r *postgresPortfolioRepo) Update(ctx context.Context, p *portfolio.Record) error {
	data, metadata, err := encodePortfolio(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE portfolios SET
			portfolio_data = $2, url = $3, is_published = $4, metadata = $5, updated_at = $6
		WHERE username = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, p.Username, data, p.URL, p.IsPublished, metadata, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return portfolio.ErrPortfolioNotFound
	}
	return nil
}

func (r *postgresPortfolioRepo) Delete(ctx context.Context, username string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM portfolios WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return portfolio.ErrPortfolioNotFound
	}
	return nil
}

func (r *postgresPortfolioRepo) FindByUsername(ctx context.Context, username string) (*portfolio.Record, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE username = $1`
	return scanPortfolio(r.db.QueryRow(ctx, query, username))
}

func (r *postgresPortfolioRepo) IncrementViews(ctx context.Context, username string) (int64, error) {
	var views int64
	err := r.db.QueryRow(ctx,
		`UPDATE portfolios SET views = views + 1 WHERE username = $1 RETURNING views`, username,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, portfolio.ErrPortfolioNotFound
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}

func (r *postgresPortfolioRepo) ExistingUsernames(ctx context.Context, names []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(names) == 0 {
		return out, nil
	}

	query, args, err := psql.Select("username").
		From("portfolios").
		Where(sq.Eq{"username": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build username lookup: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query usernames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usernames: %w", err)
	}
	return out, nil
}

func (r *postgresPortfolioRepo) List(ctx context.Context, limit, offset int) ([]*portfolio.Record, error) {
	builder := psql.Select(portfolioColumns).
		From("portfolios").
		Where(sq.Eq{"is_published": true}).
		OrderBy("created_at DESC", "username ASC").
		Offset(uint64(offset))
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build portfolio list: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	records := make([]*portfolio.Record, 0)
	for rows.Next() {
		rec, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio rows: %w", err)
	}
	return records, nil
}

func (r *postgresPortfolioRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM portfolios WHERE is_published`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return n, nil
}
