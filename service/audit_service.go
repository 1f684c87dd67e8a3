package service

import (
	"context"
	"go-shop-api/logger"
	"go-shop-api/model"
	"go-shop-api/repository"
)

// AuditService records and serves the audit trail of account and admin
// actions.
type AuditService struct {
	repo repository.IAuditRepository
}

func NewAuditService(repo repository.IAuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record stores entry. A failure to write the audit trail is logged but
// never fails the action being audited.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditLog) {
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Log.WithError(err).WithField("action", entry.Action).Error("Failed to record audit log")
	}
}

// List returns one page of entries, newest first.
func (s *AuditService) List(ctx context.Context, filter model.AuditFilter) (*model.AuditPage, error) {
	filter = NormalizeAuditFilter(filter)

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}

	pages := (total + filter.Limit - 1) / filter.Limit
	return &model.AuditPage{
		Data: logs,
		Pagination: model.Pagination{
			Current: filter.Page,
			Pages:   pages,
			Total:   total,
		},
	}, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *AuditService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// NormalizeAuditFilter defaults page to 1 and clamps limit to [1,50]
// (default 10). See normalizePage.
func NormalizeAuditFilter(f model.AuditFilter) model.AuditFilter {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	return f
}
