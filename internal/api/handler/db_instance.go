package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/SudityaSenaNimmala/Access-Requests/internal/api/middleware"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/request"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/response"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/core"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

type DBInstance struct {
	svc *core.DBInstanceService
}

func NewDBInstance(svc *core.DBInstanceService) *DBInstance {
	return &DBInstance{svc: svc}
}

// Create godoc
//
//	@Summary		Register a database instance
//	@Description	Stores the instance with its connection string encrypted at rest. The connection string is never returned by any read endpoint.
//	@Tags			Instances
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateDBInstance	true	"Instance details"
//	@Success		201		{object}	model.DBInstance
//	@Router			/instances [post]
func (h *DBInstance) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDBInstance
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := h.svc.Create(r.Context(), mw.UserFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, inst)
}

// List godoc
//
//	@Summary	List database instances
//	@Tags		Instances
//	@Security	ApiKeyAuth
//	@Param		active_only	query		bool	false	"Only instances that accept new requests"
//	@Success	200			{object}	response.PaginatedResponse{items=[]model.DBInstance}
//	@Router		/instances [get]
func (h *DBInstance) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)
	activeOnly := r.URL.Query().Get("active_only") == "true"

	instances, hasMore, err := h.svc.List(r.Context(), pg, activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if instances == nil {
		instances = []model.DBInstance{}
	}
	response.WritePaginated(w, http.StatusOK, instances, pg.Page, pg.Limit, hasMore)
}

func (h *DBInstance) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inst)
}

func (h *DBInstance) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateDBInstance
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, inst)
}

// Delete godoc
//
//	@Summary		Delete a database instance
//	@Description	Requests that referenced the instance keep its display name for audit but are detached from it.
//	@Tags			Instances
//	@Security		ApiKeyAuth
//	@Param			id	path	string	true	"Instance ID"
//	@Success		204
//	@Router			/instances/{id} [delete]
func (h *DBInstance) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestConnection godoc
//
//	@Summary		Test connectivity to an instance
//	@Description	Connects and enumerates collection names. Runs no user-submitted operation and persists nothing.
//	@Tags			Instances
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Instance ID"
//	@Success		200	{object}	map[string][]string
//	@Failure		502	{object}	map[string]string
//	@Router			/instances/{id}/test [post]
func (h *DBInstance) TestConnection(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	collections, err := h.svc.TestConnection(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if collections == nil {
		collections = []string{}
	}
	response.WriteJSON(w, http.StatusOK, map[string][]string{"collections": collections})
}
