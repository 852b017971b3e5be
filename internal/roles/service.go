package roles

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (*Role, error)
	CreateRole(ctx context.Context, role Role) (int64, error)
	UpdateRole(ctx context.Context, id int64, description *string, permissions *PermissionMatrix) error
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole loads one role.
func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole persists a new role with its permission matrix.
func (s *Service) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if req.Permissions == nil {
		req.Permissions = PermissionMatrix{}
	}
	id, err := s.repo.CreateRole(ctx, Role{Name: req.Name, Description: req.Description, Permissions: req.Permissions})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return s.repo.GetRole(ctx, id)
}

// UpdateRole updates description or matrix of an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (*Role, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetRole(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, id, req.Description, req.Permissions); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return s.repo.GetRole(ctx, id)
}
