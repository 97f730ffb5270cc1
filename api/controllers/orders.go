package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderdeskhq/orderdesk-backend/api/middleware"
	"github.com/orderdeskhq/orderdesk-backend/api/responses"
	"github.com/orderdeskhq/orderdesk-backend/api/validators"
	"github.com/orderdeskhq/orderdesk-backend/internal/orders"
	"github.com/orderdeskhq/orderdesk-backend/internal/policy"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

type orderAttributesPayload struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status"`
	Date        string `json:"date" validate:"required"`
}

type orderLinePayload struct {
	ID       string           `json:"id" validate:"required"`
	Quantity int              `json:"quantity" validate:"required"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type orderRelationshipsPayload struct {
	Products []orderLinePayload `json:"products" validate:"required,min=1,dive"`
}

type orderRequestBody struct {
	Attributes    orderAttributesPayload    `json:"attributes"`
	Relationships orderRelationshipsPayload `json:"relationships"`
}

// OrdersCreate handles POST /orders.
func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateInput(actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created, "order created")
	}
}

// OrdersList handles GET /orders with cursor pagination and filters.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := orders.ParseListQuery(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Include = orders.ParseInclude(r.URL.Query())

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// OrdersGet handles GET /orders/{orderId}.
func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		include := orders.ParseInclude(r.URL.Query())
		order, err := svc.Get(r.Context(), actor, orderID, include)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrdersUpdate handles PUT and PATCH /orders/{orderId} as a full replacement.
func OrdersUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildUpdateInput(actor, orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, updated, "order updated")
	}
}

// OrdersDelete handles DELETE /orders/{orderId}.
func OrdersDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, nil, "order deleted")
	}
}

func actorFromContext(r *http.Request) (policy.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return policy.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return policy.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid identity")
	}
	return policy.Actor{
		UserID:  userID,
		IsAdmin: middleware.IsAdminFromContext(r.Context()),
	}, nil
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return orderID, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func buildCreateInput(actor policy.Actor, body orderRequestBody) (orders.CreateOrderInput, error) {
	header, lines, err := parseOrderBody(body)
	if err != nil {
		return orders.CreateOrderInput{}, err
	}

	ownerID := actor.UserID
	if raw := strings.TrimSpace(body.Attributes.UserID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return orders.CreateOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid filter values").
				WithDetails(map[string]string{"user_id": "must be a valid uuid"})
		}
		ownerID = parsed
	}

	return orders.CreateOrderInput{
		Actor:       actor,
		UserID:      ownerID,
		Name:        header.name,
		Description: header.description,
		Status:      header.status,
		Date:        header.date,
		Lines:       lines,
	}, nil
}

func buildUpdateInput(actor policy.Actor, orderID uuid.UUID, body orderRequestBody) (orders.UpdateOrderInput, error) {
	header, lines, err := parseOrderBody(body)
	if err != nil {
		return orders.UpdateOrderInput{}, err
	}

	return orders.UpdateOrderInput{
		OrderID:     orderID,
		Actor:       actor,
		Name:        header.name,
		Description: header.description,
		Status:      header.status,
		Date:        header.date,
		Lines:       lines,
	}, nil
}

type orderHeader struct {
	name        string
	description string
	status      enums.OrderStatus
	date        time.Time
}

func parseOrderBody(body orderRequestBody) (orderHeader, []orders.LineInput, error) {
	details := map[string]string{}

	status := enums.OrderStatusPending
	if raw := strings.TrimSpace(body.Attributes.Status); raw != "" {
		parsed, err := enums.ParseOrderStatus(raw)
		if err != nil {
			details["status"] = "unknown status"
		} else {
			status = parsed
		}
	}

	var date time.Time
	if raw := strings.TrimSpace(body.Attributes.Date); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			details["date"] = "must be formatted YYYY-MM-DD"
		} else {
			date = parsed
		}
	} else {
		details["date"] = "is required"
	}

	lines := make([]orders.LineInput, 0, len(body.Relationships.Products))
	for _, item := range body.Relationships.Products {
		productID, err := uuid.Parse(strings.TrimSpace(item.ID))
		if err != nil {
			details["products"] = "each line needs a valid product id"
			continue
		}
		lines = append(lines, orders.LineInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if len(details) > 0 {
		return orderHeader{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	return orderHeader{
		name:        validators.SanitizeString(body.Attributes.Name, 255),
		description: validators.SanitizeString(body.Attributes.Description, 1000),
		status:      status,
		date:        date,
	}, lines, nil
}
