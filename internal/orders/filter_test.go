package orders

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

func TestParseListQueryValid(t *testing.T) {
	userID := uuid.New()
	values := url.Values{}
	values.Set("status", "PENDING")
	values.Set("name", " restock ")
	values.Set("description", "weekly")
	values.Set("date_from", "2025-09-01")
	values.Set("date_to", "2025-09-30")
	values.Set("user_id", userID.String())
	values.Set("sort", "-date,name")
	values.Set("unknown_key", "ignored")

	filters, err := ParseListQuery(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filters.Status == nil || *filters.Status != enums.OrderStatusPending {
		t.Fatalf("expected PENDING status filter, got %+v", filters.Status)
	}
	if filters.Name != "restock" {
		t.Fatalf("expected trimmed name filter, got %q", filters.Name)
	}
	if filters.DateFrom == nil || filters.DateTo == nil {
		t.Fatalf("expected both date bounds set")
	}
	if filters.UserID == nil || *filters.UserID != userID {
		t.Fatalf("expected user filter %s, got %+v", userID, filters.UserID)
	}
	if len(filters.Sort) != 2 {
		t.Fatalf("expected 2 sort keys, got %d", len(filters.Sort))
	}
	if filters.Sort[0].Column != "date" || !filters.Sort[0].Desc {
		t.Fatalf("expected descending date first, got %+v", filters.Sort[0])
	}
	if filters.Sort[1].Column != "name" || filters.Sort[1].Desc {
		t.Fatalf("expected ascending name second, got %+v", filters.Sort[1])
	}
}

func TestParseListQueryStatusCode(t *testing.T) {
	values := url.Values{}
	values.Set("status", "F")

	filters, err := ParseListQuery(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filters.Status == nil || *filters.Status != enums.OrderStatusFulfilled {
		t.Fatalf("expected fulfilled status from code, got %+v", filters.Status)
	}
}

func TestParseListQueryInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown status", "status", "SHIPPED"},
		{"bad date_from", "date_from", "01-09-2025"},
		{"bad date_to", "date_to", "not-a-date"},
		{"bad user_id", "user_id", "abc"},
		{"unsupported sort", "sort", "price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{}
			values.Set(tc.key, tc.value)
			_, err := ParseListQuery(values)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
			details, ok := typed.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected details map, got %T", typed.Details())
			}
			if _, present := details[tc.key]; !present {
				t.Fatalf("expected detail for %q, got %v", tc.key, details)
			}
		})
	}
}

func TestParseListQueryEmpty(t *testing.T) {
	filters, err := ParseListQuery(url.Values{})
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if filters.Status != nil || filters.Name != "" || len(filters.Sort) != 0 {
		t.Fatalf("expected zero filters, got %+v", filters)
	}
}

func TestParseInclude(t *testing.T) {
	values := url.Values{}
	values.Set("include", "user, products,unknown")

	include := ParseInclude(values)
	if !include.User || !include.Products {
		t.Fatalf("expected both include flags, got %+v", include)
	}

	if got := ParseInclude(url.Values{}); got.User || got.Products {
		t.Fatalf("expected empty include, got %+v", got)
	}
}
