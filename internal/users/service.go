package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

// Service exposes the read operations behind the users endpoints.
type Service interface {
	Get(ctx context.Context, id uuid.UUID, includeOrders bool) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error)
}

type service struct {
	repo *Repository
}

// NewService wires the users service over its repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users service requires a repository")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeOrders bool) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id, includeOrders)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list users")
	}
	return list, nil
}
