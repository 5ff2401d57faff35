package handler

import (
	"errors"
	"net/http"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/response"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/core"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/target"
)

// writeServiceError maps service errors onto HTTP statuses. Conflicts get
// their own status so clients can refresh and see the real current state
// instead of treating the response as bad input.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		parseErr    *query.ParseError
		validateErr *core.ValidationError
		conflictErr *core.ConflictError
		connErr     *target.ConnectionError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validateErr):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, "not found")
	case errors.As(err, &conflictErr):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &connErr):
		response.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
