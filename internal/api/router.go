package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"clubroster/internal/config"
	"clubroster/internal/ingest"
	"clubroster/internal/middleware"
	"clubroster/internal/models"
	"clubroster/internal/provider"
	"clubroster/internal/rate"
	"clubroster/internal/report"
	"clubroster/internal/service"
	"clubroster/internal/store"
	"clubroster/internal/util"
	"clubroster/internal/version"
)

const maxUploadBytes = 10 << 20

type Handlers struct {
	cfg     config.Config
	svc     *service.Service
	st      *store.Store
	limiter *rate.Limiter
}

func NewRouter(cfg config.Config, svc *service.Service, st *store.Store) http.Handler {
	h := &Handlers{cfg: cfg, svc: svc, st: st, limiter: rate.NewLimiter()}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, 200, map[string]string{"status": "ok", "version": version.Current().Version})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := h.st.Ping(r.Context()); err != nil {
			util.WriteJSON(w, 503, map[string]any{"status": "degraded", "database": err.Error()})
			return
		}
		util.WriteJSON(w, 200, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(h.limiter, "register", 10, time.Minute, cfg.TrustProxy)).
			Post("/auth/register", h.Register)
		r.With(middleware.RateLimit(h.limiter, "login", 20, time.Minute, cfg.TrustProxy)).
			Post("/auth/login", h.Login)
		r.With(middleware.RateLimit(h.limiter, "exchange", 20, time.Minute, cfg.TrustProxy)).
			Post("/auth/session", h.ExchangeSession)
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authn(h.svc, cfg.SessionCookieName))

			r.Get("/auth/me", h.Me)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/members", func(r chi.Router) {
				r.Get("/", h.ListMembers)
				r.Post("/", h.CreateMember)
				r.Get("/printable-list", h.PrintableList)
				r.Get("/suburbs/list", h.Suburbs)
				r.Post("/bulk-upload", h.BulkUploadMembers)
				r.Post("/export", h.ExportMembers)
				r.Get("/{id}", h.GetMember)
				r.Put("/{id}", h.UpdateMember)
				r.With(middleware.AdminOnly).Delete("/{id}", h.DeleteMember)
			})

			r.Route("/vehicles", func(r chi.Router) {
				editors := middleware.RequireRole(models.RoleAdmin, models.RoleFullEditor)
				r.Get("/", h.ListVehicles)
				r.With(editors).Post("/", h.CreateVehicle)
				r.With(editors).Post("/bulk-upload", h.BulkUploadVehicles)
				r.Get("/{id}", h.GetVehicle)
				r.With(editors).Put("/{id}", h.UpdateVehicle)
				r.With(editors).Delete("/{id}", h.ArchiveVehicle)
				r.With(middleware.AdminOnly).Post("/{id}/restore", h.RestoreVehicle)
				r.With(middleware.AdminOnly).Delete("/{id}/permanent", h.DeleteVehiclePermanently)
			})

			r.Route("/vehicle-options", func(r chi.Router) {
				r.Get("/", h.ListVehicleOptions)
				r.With(middleware.AdminOnly).Post("/", h.CreateVehicleOption)
				r.With(middleware.AdminOnly).Delete("/{id}", h.DeleteVehicleOption)
			})

			r.Get("/stats/dashboard", h.DashboardStats)
			r.Get("/reports/members", h.MemberReport)
			r.Get("/contact-lists", h.ContactList)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/mark-expired-unfinancial", h.MarkExpiredUnfinancial)
				r.Post("/clear-all-data", h.ClearAllData)
			})
		})
	})

	return r
}

// writeErr maps sentinel errors from the lower layers onto HTTP codes.
func (h *Handlers) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	rid := middleware.RequestID(r.Context())
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		util.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", rid)
	case errors.Is(err, service.ErrUserGone):
		util.WriteError(w, http.StatusNotFound, "not_found", "user not found", rid)
	case errors.Is(err, store.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, "not_found", "resource not found", rid)
	case errors.Is(err, store.ErrConflict):
		util.WriteError(w, http.StatusConflict, "conflict", "resource already exists", rid)
	case errors.Is(err, service.ErrEmptyUpdate):
		util.WriteError(w, http.StatusBadRequest, "bad_request", "no fields to update", rid)
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, ingest.ErrNotCSV),
		errors.Is(err, ingest.ErrUndecodable),
		errors.Is(err, report.ErrUnknownFilter),
		errors.Is(err, report.ErrUnknownListType):
		util.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), rid)
	case errors.Is(err, provider.ErrRejected):
		util.WriteError(w, http.StatusBadRequest, "exchange_rejected", "provider rejected the session", rid)
	case errors.Is(err, provider.ErrTimeout):
		util.WriteError(w, http.StatusGatewayTimeout, "provider_timeout", "provider did not answer in time", rid)
	case errors.Is(err, provider.ErrUnavailable):
		util.WriteError(w, http.StatusInternalServerError, "provider_unavailable", "provider is unavailable", rid)
	default:
		log.Printf("internal error request_id=%s err=%v", rid, err)
		util.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", rid)
	}
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cfg.SessionTTL().Seconds()),
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(1, 0).UTC(),
	})
}
