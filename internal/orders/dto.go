package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderdeskhq/orderdesk-backend/internal/policy"
	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// LineInput is one requested product line. Price is optional; when nil the
// product's current price is captured at mutation time.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     *decimal.Decimal
}

// CreateOrderInput carries everything needed to create an order.
type CreateOrderInput struct {
	Actor       policy.Actor
	UserID      uuid.UUID
	Name        string
	Description string
	Status      enums.OrderStatus
	Date        time.Time
	Lines       []LineInput
}

// UpdateOrderInput carries a full replacement of the order's fields and line set.
type UpdateOrderInput struct {
	OrderID     uuid.UUID
	Actor       policy.Actor
	Name        string
	Description string
	Status      enums.OrderStatus
	Date        time.Time
	Lines       []LineInput
}

// OrderLineDTO is the transport shape for one line on an order.
type OrderLineDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the transport shape for a full order aggregate.
type OrderDTO struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Date        string         `json:"date"`
	Products    []OrderLineDTO `json:"products,omitempty"`
	User        *users.UserDTO `json:"user,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

const dateLayout = "2006-01-02"

// FromModel maps the persisted aggregate into its transport shape.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	dto := &OrderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		Name:        o.Name,
		Description: o.Description,
		Status:      o.Status.Label(),
		Date:        o.Date.Format(dateLayout),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, line := range o.Lines {
		item := OrderLineDTO{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
		if line.Product != nil {
			item.Name = line.Product.Name
		}
		dto.Products = append(dto.Products, item)
	}
	if o.User != nil {
		dto.User = users.FromModel(o.User)
	}
	return dto
}
