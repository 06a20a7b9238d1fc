package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
	"github.com/angelmondragon/printshop-backend/pkg/types"
)

// requestIDHeader mirrors the header set by the request id middleware.
const requestIDHeader = "X-Request-Id"

// Codes whose own message is safe to show the client. Everything else gets
// the generic public message of its code.
var clientFacingCodes = map[pkgerrors.Code]struct{}{
	pkgerrors.CodeValidation:      {},
	pkgerrors.CodeNotFound:        {},
	pkgerrors.CodeConflict:        {},
	pkgerrors.CodeVersionConflict: {},
	pkgerrors.CodeIdempotency:     {},
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError renders err as the error envelope. Untyped errors become
// INTERNAL_ERROR. Client errors are logged at warn, server errors at error
// with the full chain dump.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:      string(typed.Code()),
		Message:   publicMessage(typed, meta),
		Retryable: meta.Retryable,
		RequestID: w.Header().Get(requestIDHeader),
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	fields := pkgerrors.Dump(err).Fields()
	fields["status"] = meta.HTTPStatus
	if apiErr.Details != nil {
		fields["details"] = apiErr.Details
	}
	ctx = logg.WithFields(ctx, fields)
	if meta.HTTPStatus < http.StatusInternalServerError {
		logg.Warn(ctx, "request.rejected")
	} else {
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Error: apiErr})
}

func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if _, ok := clientFacingCodes[typed.Code()]; ok && typed.Message() != "" {
		return typed.Message()
	}
	return meta.PublicMessage
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; nothing left to tell the client.
		log.Printf("responses: encode %d payload: %v", status, err)
	}
}
