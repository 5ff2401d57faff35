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

type AccessRequest struct {
	svc *core.AccessRequestService
}

func NewAccessRequest(svc *core.AccessRequestService) *AccessRequest {
	return &AccessRequest{svc: svc}
}

// Create godoc
//
//	@Summary		Submit a query request
//	@Description	Parses and classifies the submitted query. Read-only operations execute immediately and the request is returned already executed or failed; write operations are stored pending team-lead approval.
//	@Tags			Requests
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateAccessRequest	true	"Request details"
//	@Success		201		{object}	model.AccessRequest
//	@Failure		400		{object}	map[string]string
//	@Router			/requests [post]
func (h *AccessRequest) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccessRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ar, err := h.svc.Create(r.Context(), mw.UserFrom(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, ar)
}

// Get godoc
//
//	@Summary	Get a request
//	@Tags		Requests
//	@Security	ApiKeyAuth
//	@Param		id	path		string	true	"Request ID"
//	@Success	200	{object}	model.AccessRequest
//	@Router		/requests/{id} [get]
func (h *AccessRequest) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ar, err := h.svc.Get(r.Context(), mw.UserFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ar)
}

// ListMine returns the caller's own submissions.
func (h *AccessRequest) ListMine(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseListParams(r, "created_at")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.DeveloperID = mw.UserFrom(r.Context()).ID
	h.list(w, r, params)
}

// ListTeam returns the requests awaiting or decided by the caller as lead.
func (h *AccessRequest) ListTeam(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseListParams(r, "created_at")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.TeamLeadID = mw.UserFrom(r.Context()).ID
	h.list(w, r, params)
}

// List godoc
//
//	@Summary		List all requests
//	@Description	Admin-wide listing with status, category, instance, collection, and date-range filters.
//	@Tags			Requests
//	@Security		ApiKeyAuth
//	@Success		200	{object}	response.PaginatedResponse{items=[]model.AccessRequest}
//	@Router			/requests [get]
func (h *AccessRequest) List(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseListParams(r, "created_at")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.list(w, r, params)
}

func (h *AccessRequest) list(w http.ResponseWriter, r *http.Request, params request.ListParams) {
	requests, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []model.AccessRequest{}
	}
	response.WritePaginated(w, http.StatusOK, requests, params.Page, params.Limit, hasMore)
}

// Approve godoc
//
//	@Summary		Approve a pending request
//	@Description	Claims the pending request, executes its query, and returns the final record. A target connection failure leaves the request pending so the approval can be retried.
//	@Tags			Requests
//	@Security		ApiKeyAuth
//	@Param			id		path		string							true	"Request ID"
//	@Param			body	body		request.ApproveAccessRequest	false	"Optional review comment"
//	@Success		200		{object}	model.AccessRequest
//	@Failure		409		{object}	map[string]string
//	@Router			/requests/{id}/approve [post]
func (h *AccessRequest) Approve(w http.ResponseWriter, r *http.Request) {
	id, caller, req, ok := h.decideParams(w, r)
	if !ok {
		return
	}

	ar, err := h.svc.Approve(r.Context(), caller, id, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ar)
}

// Reject godoc
//
//	@Summary	Reject a pending request
//	@Tags		Requests
//	@Security	ApiKeyAuth
//	@Param		id		path		string							true	"Request ID"
//	@Param		body	body		request.RejectAccessRequest	true	"Rejection comment"
//	@Success	200		{object}	model.AccessRequest
//	@Router		/requests/{id}/reject [post]
func (h *AccessRequest) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	caller := mw.UserFrom(r.Context())
	if !h.mayDecide(w, r, caller, id) {
		return
	}

	var req request.RejectAccessRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ar, err := h.svc.Reject(r.Context(), caller, id, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, ar)
}

// Resubmit godoc
//
//	@Summary		Resubmit a rejected or failed request
//	@Description	Creates a brand-new request from the source record; the source is never mutated. Fields left out of the body are copied from the source.
//	@Tags			Requests
//	@Security		ApiKeyAuth
//	@Param			id		path		string							true	"Source request ID"
//	@Param			body	body		request.ResubmitAccessRequest	false	"Overrides"
//	@Success		201		{object}	model.AccessRequest
//	@Router			/requests/{id}/resubmit [post]
func (h *AccessRequest) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.ResubmitAccessRequest
	if r.ContentLength > 0 {
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ar, err := h.svc.Resubmit(r.Context(), mw.UserFrom(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, ar)
}

func (h *AccessRequest) decideParams(w http.ResponseWriter, r *http.Request) (string, *model.User, request.ApproveAccessRequest, bool) {
	var req request.ApproveAccessRequest

	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", nil, req, false
	}
	caller := mw.UserFrom(r.Context())
	if !h.mayDecide(w, r, caller, id) {
		return "", nil, req, false
	}

	if r.ContentLength > 0 {
		if err := request.Decode(r, &req); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return "", nil, req, false
		}
	}
	return id, caller, req, true
}

// mayDecide checks that the request is visible to the caller as a reviewer
// before any decision runs. Visibility is the authorization boundary: a lead
// only ever sees their own team's requests.
func (h *AccessRequest) mayDecide(w http.ResponseWriter, r *http.Request, caller *model.User, id string) bool {
	if _, err := h.svc.Get(r.Context(), caller, id); err != nil {
		writeServiceError(w, err)
		return false
	}
	return true
}
