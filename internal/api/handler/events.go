package handler

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	mw "github.com/SudityaSenaNimmala/Access-Requests/internal/api/middleware"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/response"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/notify"
)

type Events struct {
	hub   *notify.Hub
	users mw.UserSource
}

func NewEvents(hub *notify.Hub, users mw.UserSource) *Events {
	return &Events{hub: hub, users: users}
}

// Stream upgrades to WebSocket and pushes request status events to the
// caller until the connection closes.
func (h *Events) Stream(w http.ResponseWriter, r *http.Request) {
	// Auth via query param (WebSocket API doesn't support custom headers).
	token := r.URL.Query().Get("token")
	if token == "" {
		response.WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}
	user, err := h.users.GetByAPIKey(r.Context(), token)
	if err != nil {
		response.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin differs from Host when proxied through the frontend.
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.CloseNow()

	unregister := h.hub.Register(user.ID, ws)
	defer unregister()

	// Drain client frames until the peer goes away; events flow the other
	// direction through the hub.
	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				ws.Close(websocket.StatusNormalClosure, "")
			}
			return
		}
	}
}
