package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clubroster/internal/middleware"
	"clubroster/internal/models"
	"clubroster/internal/util"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	token, user, err := h.svc.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.setSessionCookie(w, token)
	util.WriteJSON(w, 201, map[string]any{"user": user, "session_token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.setSessionCookie(w, token)
	util.WriteJSON(w, 200, map[string]any{"user": user, "session_token": token})
}

// ExchangeSession trades an external provider session id for a local
// session. The id arrives as a query parameter.
func (h *Handlers) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	token, user, err := h.svc.ExchangeDelegatedSession(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.setSessionCookie(w, token)
	util.WriteJSON(w, 200, map[string]any{"user": user, "session_token": token})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, h.cfg.SessionCookieName)
	if err := h.svc.Logout(r.Context(), token); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.clearSessionCookie(w)
	util.WriteJSON(w, 200, map[string]string{"status": "logged_out"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	util.WriteJSON(w, 200, u)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	util.WriteJSON(w, 200, users)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 201, u)
}

type updateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), req.Name, req.Role)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, u)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "deleted"})
}
