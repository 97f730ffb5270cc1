package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/policy"
	"github.com/orderdeskhq/orderdesk-backend/internal/stock"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the order mutation and read operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Update(ctx context.Context, input UpdateOrderInput) (*OrderDTO, error)
	Delete(ctx context.Context, actor policy.Actor, orderID uuid.UUID) error
	Get(ctx context.Context, actor policy.Actor, orderID uuid.UUID, include Include) (*OrderDTO, error)
	List(ctx context.Context, actor policy.Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger stock.Ledger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, ledger stock.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{repo: repo, tx: tx, ledger: ledger}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !policy.Allows(input.Actor, policy.ActionCreate, input.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to create orders")
	}
	ownerID := input.UserID
	if ownerID == uuid.Nil {
		ownerID = input.Actor.UserID
	}
	if err := validateHeader(input.Name, input.Status); err != nil {
		return nil, err
	}
	requested, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		prices, err := s.snapshotPrices(ctx, repo, requested)
		if err != nil {
			return err
		}

		// Reserve in a stable order so contention resolves deterministically.
		for _, line := range requested {
			if err := s.ledger.ApplyDelta(ctx, tx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}

		order := &models.Order{
			ID:          uuid.New(),
			UserID:      ownerID,
			Name:        input.Name,
			Description: input.Description,
			Status:      input.Status,
			Date:        input.Date,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		lines := buildLines(order.ID, requested, prices)
		if err := repo.ReplaceLines(ctx, order.ID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}

		created, err = repo.FindByID(ctx, order.ID, Include{Products: true})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, input UpdateOrderInput) (*OrderDTO, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := validateHeader(input.Name, input.Status); err != nil {
		return nil, err
	}
	requested, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID, Include{})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !policy.Allows(input.Actor, policy.ActionUpdate, order.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		prices, err := s.snapshotPrices(ctx, repo, requested)
		if err != nil {
			return err
		}

		existing, err := repo.FindLinesByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}

		if err := s.applyLineDeltas(ctx, tx, existing, requested); err != nil {
			return err
		}

		lines := buildLines(order.ID, requested, prices)
		if err := repo.ReplaceLines(ctx, order.ID, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order lines")
		}

		updates := map[string]any{
			"name":        input.Name,
			"description": input.Description,
			"status":      input.Status,
			"date":        input.Date,
		}
		if err := repo.UpdateHeader(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order header")
		}

		updated, err = repo.FindByID(ctx, order.ID, Include{Products: true})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, orderID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID, Include{})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !policy.Allows(actor, policy.ActionDelete, order.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		// Deleting an order releases every reserved unit back to stock.
		for _, line := range order.Lines {
			if err := s.ledger.ApplyDelta(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := repo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, actor policy.Actor, orderID uuid.UUID, include Include) (*OrderDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindByID(ctx, orderID, include)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !policy.Allows(actor, policy.ActionView, order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if !policy.Allows(actor, policy.ActionList, uuid.Nil) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// applyLineDeltas reconciles the existing line set against the requested one.
// Per product: delta = requested - existing; negative deltas were released,
// positive deltas reserved. Removed products release their full quantity,
// added products reserve theirs.
func (s *service) applyLineDeltas(ctx context.Context, tx *gorm.DB, existing []models.OrderLine, requested []LineInput) error {
	deltas := map[uuid.UUID]int{}
	for _, line := range existing {
		deltas[line.ProductID] -= line.Quantity
	}
	for _, line := range requested {
		deltas[line.ProductID] += line.Quantity
	}

	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if err := s.ledger.ApplyDelta(ctx, tx, id, -deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) snapshotPrices(ctx context.Context, repo Repository, requested []LineInput) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for _, line := range requested {
		ids = append(ids, line.ProductID)
	}

	products, err := repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, product := range products {
		prices[product.ID] = product.Price
	}
	for _, line := range requested {
		if _, ok := prices[line.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
	}
	return prices, nil
}

func validateHeader(name string, status enums.OrderStatus) error {
	details := map[string]string{}
	if name == "" {
		details["name"] = "name is required"
	}
	if !status.IsValid() {
		details["status"] = fmt.Sprintf("unknown status %q", status)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order attributes").WithDetails(details)
	}
	return nil
}

// normalizeLines rejects empty sets, non-positive quantities, and duplicate
// products, returning the lines sorted by product id.
func normalizeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product is required")
	}

	seen := map[uuid.UUID]bool{}
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every line")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		if seen[line.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product on order").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		seen[line.ProductID] = true
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out, nil
}

func buildLines(orderID uuid.UUID, requested []LineInput, prices map[uuid.UUID]decimal.Decimal) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(requested))
	for _, line := range requested {
		price := prices[line.ProductID]
		if line.Price != nil {
			price = *line.Price
		}
		lines = append(lines, models.OrderLine{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}
	return lines
}
