package orders

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// ListFilters describe the whitelisted filter knobs for the orders list.
type ListFilters struct {
	Status      *enums.OrderStatus
	Name        string
	Description string
	DateFrom    *time.Time
	DateTo      *time.Time
	UserID      *uuid.UUID
	Sort        []SortKey
	Include     Include
}

// SortKey is one validated ordering clause.
type SortKey struct {
	Column string
	Desc   bool
}

var sortableColumns = map[string]bool{
	"created_at": true,
	"date":       true,
	"status":     true,
	"name":       true,
}

// ParseListQuery extracts the whitelisted filters from the raw query string.
// Unknown keys are ignored; invalid values for known keys are rejected.
func ParseListQuery(values url.Values) (ListFilters, error) {
	var filters ListFilters
	details := map[string]string{}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			details["status"] = fmt.Sprintf("unknown status %q", raw)
		} else {
			filters.Status = &status
		}
	}

	filters.Name = strings.TrimSpace(values.Get("name"))
	filters.Description = strings.TrimSpace(values.Get("description"))

	if raw := strings.TrimSpace(values.Get("date_from")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			details["date_from"] = fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw)
		} else {
			filters.DateFrom = &t
		}
	}
	if raw := strings.TrimSpace(values.Get("date_to")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			details["date_to"] = fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw)
		} else {
			filters.DateTo = &t
		}
	}

	if raw := strings.TrimSpace(values.Get("user_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			details["user_id"] = fmt.Sprintf("invalid uuid %q", raw)
		} else {
			filters.UserID = &id
		}
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			key := SortKey{Column: token}
			if strings.HasPrefix(token, "-") {
				key = SortKey{Column: token[1:], Desc: true}
			}
			if !sortableColumns[key.Column] {
				details["sort"] = fmt.Sprintf("unsupported sort column %q", key.Column)
				continue
			}
			filters.Sort = append(filters.Sort, key)
		}
	}

	if len(details) > 0 {
		return ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid filter values").WithDetails(details)
	}
	return filters, nil
}

// ParseInclude reads the include query parameter shared by the detail and
// list endpoints. Unknown include values are ignored.
func ParseInclude(values url.Values) Include {
	var include Include
	for _, raw := range strings.Split(values.Get("include"), ",") {
		switch strings.TrimSpace(raw) {
		case "user":
			include.User = true
		case "products":
			include.Products = true
		}
	}
	return include
}
