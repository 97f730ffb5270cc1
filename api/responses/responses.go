package responses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
	"github.com/orderdeskhq/orderdesk-backend/pkg/types"
)

// WriteSuccess writes the data envelope with a 200 status.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data, "")
}

// WriteSuccessStatus writes the data envelope with an explicit status and
// optional message.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, types.SuccessEnvelope{
		Data:    data,
		Message: message,
		Status:  status,
	})
}

// WriteError maps err onto the error envelope. Typed errors carry their own
// HTTP status and public message; anything else collapses to a 500 with a
// generic body. 5xx causes are logged with the full error dump.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	code := errors.CodeInternal
	if typed := errors.As(err); typed != nil {
		code = typed.Code()
	}
	meta := errors.MetadataFor(code)

	if meta.HTTPStatus >= http.StatusInternalServerError && logg != nil {
		ctx = logg.WithField(ctx, "dump", errors.Dump(err))
		logg.Error(ctx, "request failed", err)
	}

	var body any = meta.PublicMessage
	if meta.DetailsAllowed {
		if typed := errors.As(err); typed != nil && typed.Details() != nil {
			body = typed.Details()
		}
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{
		Errors: body,
		Status: meta.HTTPStatus,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
