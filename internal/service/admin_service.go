package service

import (
	"context"

	"github.com/kpredict/predict-backend/internal/model"
	"github.com/kpredict/predict-backend/internal/repository"
)

// AdminService handles administrator account lookups.
type AdminService struct {
	repo *repository.AdminRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo *repository.AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

// GetByEmail retrieves an administrator by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetByID retrieves an administrator by primary key.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	return s.repo.GetByID(ctx, id)
}
