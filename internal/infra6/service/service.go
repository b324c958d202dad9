// Package service exposes the Infrastructure Resolver as a thin pass-
// through over its repository, the same shape the teacher's
// internal/monitoring/service layer takes over its repository.
package service

import (
	"context"

	"github.com/intend-project/inserv-orch/internal/infra6/domain"
)

// Service implements domain.Resolver.
type Service struct {
	repo domain.Resolver
}

// NewService builds the Infrastructure Resolver service.
func NewService(repo domain.Resolver) *Service {
	return &Service{repo: repo}
}

// ResolveHandlerURL delegates to the repository.
func (s *Service) ResolveHandlerURL(ctx context.Context, datacenterID string) (string, error) {
	return s.repo.ResolveHandlerURL(ctx, datacenterID)
}

var _ domain.Resolver = (*Service)(nil)
