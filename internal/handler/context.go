package handler

import (
	"net/http"
	"strconv"

	"timevault/internal/config"
	"timevault/internal/domain/repositories"
	"timevault/internal/httputil"
)

// requireIdentity extracts the authenticated tenant and user from the request
// context. The auth middleware guarantees both are set on protected routes;
// an empty value here means the route was wired without it.
func requireIdentity(w http.ResponseWriter, r *http.Request) (tenantID, userID string, ok bool) {
	tenantID = httputil.GetTenantID(r)
	userID = httputil.GetUserID(r)
	if tenantID == "" || userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing authentication context")
		return "", "", false
	}
	return tenantID, userID, true
}

// listOptionsFromQuery parses the shared limit/offset/order query parameters.
func listOptionsFromQuery(r *http.Request) repositories.ListOptions {
	q := r.URL.Query()

	opts := repositories.ListOptions{
		Limit:  config.DefaultPageSize,
		Offset: 0,
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = min(n, config.MaxPageSize)
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	if v := q.Get("order_by"); v != "" {
		opts.OrderBy = v
	}
	opts.OrderDesc = q.Get("order") == "desc"
	opts.IncludeDeleted = q.Get("include_deleted") == "true"

	return opts
}
