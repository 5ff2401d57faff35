package handler

import (
	"net/http"

	mw "github.com/SudityaSenaNimmala/Access-Requests/internal/api/middleware"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/request"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/response"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/core"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

type User struct {
	svc *core.UserService
}

func NewUser(svc *core.UserService) *User {
	return &User{svc: svc}
}

type createdUser struct {
	User   *model.User `json:"user"`
	APIKey string      `json:"api_key"`
}

// Create godoc
//
//	@Summary		Create a user
//	@Description	Registers a user and returns their API key. The key is shown exactly once; only its hash is stored.
//	@Tags			Users
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateUser	true	"User details"
//	@Success		201		{object}	createdUser
//	@Router			/users [post]
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, apiKey, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, createdUser{User: user, APIKey: apiKey})
}

// Me returns the authenticated caller.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, mw.UserFrom(r.Context()))
}
