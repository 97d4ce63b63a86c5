package service

import (
	"context"

	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/session"
)

type AuditService struct {
	audit AuditLog
}

func NewAuditService(audit AuditLog) *AuditService {
	if audit == nil {
		audit = repository.NopAuditRepository{}
	}
	return &AuditService{audit: audit}
}

// Latest returns up to limit write attempts, newest first.
func (s *AuditService) Latest(ctx context.Context, sess session.Session, limit int) ([]repository.AuditEntry, error) {
	if err := requireManager(sess); err != nil {
		return nil, err
	}
	return s.audit.Latest(ctx, limit)
}
