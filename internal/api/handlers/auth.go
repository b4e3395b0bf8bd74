package handlers

import (
	"net/http"

	"github.com/mealtrack/meal-tracker/internal/api/middleware"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/service"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	sessions *service.SessionManager
	users    *service.UserService
	log      *logrus.Entry
}

func NewAuthHandler(sessions *service.SessionManager, users *service.UserService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		users:    users,
		log:      logger.Component(log, "auth_handler"),
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	service.ProfileInput
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.sessions.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Profile:  req.ProfileInput,
	})
	if err != nil {
		writeError(w, h.log, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{User: result.User, Token: result.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.sessions.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.log, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: result.User, Token: result.Token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, "me", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req service.ProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, "update_profile", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, _ := middleware.GetToken(r.Context())

	if err := h.sessions.EndSession(r.Context(), userID, token); err != nil {
		writeError(w, h.log, "logout", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
