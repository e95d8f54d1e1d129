package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

type postgresSourceRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSourceRepo(db *pgxpool.Pool, log logger.Logger) portfolio.SourceRepository {
	return &postgresSourceRepo{db: db, logger: log}
}

func (r *postgresSourceRepo) FindByURL(ctx context.Context, url string) (*portfolio.SourcePortfolio, error) {
	s := &portfolio.SourcePortfolio{}
	var dataBytes, metadataBytes []byte

	err := r.db.QueryRow(ctx,
		`SELECT url, portfolio, metadata FROM source_portfolios WHERE url = $1`, url,
	).Scan(&s.URL, &dataBytes, &metadataBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, portfolio.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to query source portfolio: %w", err)
	}

	if err := json.Unmarshal(dataBytes, &s.Portfolio); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source portfolio: %w", err)
	}
	if err := json.Unmarshal(metadataBytes, &s.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source metadata: %w", err)
	}
	return s, nil
}

// Save upserts by URL.
func (r *postgresSourceRepo) Save(ctx context.Context, s *portfolio.SourcePortfolio) error {
	dataBytes, err := json.Marshal(s.Portfolio)
	if err != nil {
		return fmt.Errorf("failed to marshal source portfolio: %w", err)
	}
	metadataBytes, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal source metadata: %w", err)
	}

	query := `
		INSERT INTO source_portfolios (url, portfolio, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO UPDATE SET portfolio = EXCLUDED.portfolio, metadata = EXCLUDED.metadata, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, s.URL, dataBytes, metadataBytes); err != nil {
		return fmt.Errorf("failed to save source portfolio: %w", err)
	}
	return nil
}

// SeedSourceRepo writes the bundled fixtures into repo.
func SeedSourceRepo(ctx context.Context, repo portfolio.SourceRepository) error {
	seeds, err := SeedSources()
	if err != nil {
		return err
	}
	for _, s := range seeds {
		if err := repo.Save(ctx, s); err != nil {
			return fmt.Errorf("seed %s: %w", s.URL, err)
		}
	}
	return nil
}
