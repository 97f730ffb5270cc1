package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

// ListFilters narrow the users listing.
type ListFilters struct {
	Email         string
	Name          string
	IncludeOrders bool
}

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID, optionally preloading their orders.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, includeOrders bool) (*models.User, error) {
	query := r.db.WithContext(ctx)
	if includeOrders {
		query = query.Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
	}

	var user models.User
	if err := query.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// List returns a keyset-paginated page of users ordered newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserList, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.IncludeOrders {
		query = query.Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
	}
	if filters.Email != "" {
		query = query.Where("lower(email) LIKE lower(?)", "%"+filters.Email+"%")
	}
	if filters.Name != "" {
		pattern := "%" + filters.Name + "%"
		query = query.Where(
			"lower(first_name) LIKE lower(?) OR lower(last_name) LIKE lower(?)",
			pattern, pattern,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.User
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &UserList{Users: []UserDTO{}}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		list.Users = append(list.Users, *FromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
