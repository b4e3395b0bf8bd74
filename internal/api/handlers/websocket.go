package handlers

import (
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/mealtrack/meal-tracker/internal/api/middleware"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub  *websocket.Hub
	auth middleware.Authenticator
	log  *logrus.Entry
}

func NewWebSocketHandler(hub *websocket.Hub, auth middleware.Authenticator, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
		log:  logger.Component(log, "websocket_handler"),
	}
}

// Handle upgrades the connection of an authenticated user. Browsers cannot
// set headers on the upgrade request, so the token comes from the query.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "Token required")
		return
	}

	session, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		writeError(w, h.log, "websocket_auth", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, session.UserID)
	h.hub.Register(client)

	if session.Reissued {
		client.Send(websocket.MessageTypeSessionReissued, sessionPayload{UserID: session.UserID, Token: session.Token})
	}

	go client.WritePump()
	go client.ReadPump()
}

type sessionPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}
