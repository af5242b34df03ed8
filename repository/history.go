package repository

import (
	"context"

	"github.com/mailsig/sigsync/domain"
)

// RunHistoryRepository persists the report of each synchronization run.
type RunHistoryRepository interface {
	Save(ctx context.Context, report *domain.RunReport) error
	List(ctx context.Context, limit int) ([]domain.RunReport, error)
	GetByID(ctx context.Context, id string) (*domain.RunReport, error)
}
