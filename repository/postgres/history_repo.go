package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/repository"
)

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewRunHistoryRepository instantiates a Postgres-backed run history repository.
func NewRunHistoryRepository(pool *pgxpool.Pool) repository.RunHistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Save(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO run_reports (id, domain, template_id, dry_run, started_at, finished_at, processed, skipped, failed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	outcome := report.Outcome
	if outcome == nil {
		outcome = domain.NewSyncOutcome()
	}

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Domain,
		report.TemplateID,
		report.DryRun,
		report.StartedAt,
		report.FinishedAt,
		marshalStrings(outcome.Processed),
		marshalStrings(outcome.Skipped),
		marshalFailures(outcome.Failed),
	)
	return err
}

func (r *historyRepository) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
	SELECT id, domain, template_id, dry_run, started_at, finished_at, processed, skipped, failed
	FROM run_reports
	ORDER BY started_at DESC
	LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.RunReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (r *historyRepository) GetByID(ctx context.Context, id string) (*domain.RunReport, error) {
	const query = `
	SELECT id, domain, template_id, dry_run, started_at, finished_at, processed, skipped, failed
	FROM run_reports
	WHERE id = $1
	`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return report, nil
}

func scanReport(row pgx.Row) (*domain.RunReport, error) {
	var report domain.RunReport
	var processed, skipped, failed []byte

	if err := row.Scan(
		&report.ID,
		&report.Domain,
		&report.TemplateID,
		&report.DryRun,
		&report.StartedAt,
		&report.FinishedAt,
		&processed,
		&skipped,
		&failed,
	); err != nil {
		return nil, err
	}

	report.Outcome = unmarshalOutcome(processed, skipped, failed)
	return &report, nil
}
