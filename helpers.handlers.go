package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// writeFailure logs the error and answers with the status of its kind.
// Unexpected failures hide their details behind a generic message.
func (api *APIHandler) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := api.GetLoggerFromContext(ctx)
	status := HTTPStatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("failed to "+op, zap.String("error.kind", string(KindOf(err))), zap.Error(err))
		message = "failed to " + op
	} else {
		logger.Info("rejected to "+op, zap.String("error.kind", string(KindOf(err))), zap.String("error", message))
	}
	errResp := NewAPIError(GetValueFromContext(ctx, RequestIDContextKey), status, message)
	if werr := WriteErrorResponse(ctx, w, errResp); werr != nil {
		logger.Error("failed to send error response", zap.Error(werr))
	}
}

// writeSuccess sends the data wrapped into the success envelope.
func (api *APIHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, pagination *Pagination) {
	ctx := r.Context()
	resp := GenericResponse(GetValueFromContext(ctx, RequestIDContextKey), status, message, data, pagination)
	if err := WriteResponse(ctx, w, resp); err != nil {
		api.GetLoggerFromContext(ctx).Error("failed to send response", zap.Error(err))
	}
}

// checkID answers 400 and returns false when the path id is malformed.
func (api *APIHandler) checkID(w http.ResponseWriter, r *http.Request, id, prefix, label string) bool {
	if api.idsHandler.IsValid(id, prefix) {
		return true
	}
	api.writeFailure(w, r, "validate "+label+" id", newDomainError(ErrValidation, "%s id provided is not valid", label))
	return false
}

// extendWriteDeadline gives more time to the full scan endpoints.
//
//nolint:bodyclose
func (api *APIHandler) extendWriteDeadline(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
		api.GetLoggerFromContext(r.Context()).Debug("http: failed to update the write deadline", zap.Error(err))
	}
}
