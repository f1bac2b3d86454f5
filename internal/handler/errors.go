package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"timevault/internal/domain"
	"timevault/internal/httputil"
)

// respondDomainError maps a domain error onto an RFC 7807 response. Anything
// that is not an HTTPError is treated as an internal failure and its detail
// is kept out of the response body.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var batchErr *domain.BatchItemError
	if errors.As(err, &batchErr) {
		httputil.RespondErrorWithExtras(w, batchErr.StatusCode(), batchErr.Error(), map[string]interface{}{
			"failed_index": batchErr.Index,
		})
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
		httputil.RespondErrorWithExtras(w, conflictErr.StatusCode(), conflictErr.Error(), map[string]interface{}{
			"conflicting_id": conflictErr.ResourceID,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		status := httpErr.StatusCode()
		if status >= 500 {
			logger.Error("request failed", "error", err)
			httputil.RespondError(w, status, "internal server error")
			return
		}
		httputil.RespondError(w, status, httpErr.Error())
		return
	}

	logger.Error("unhandled error", "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
