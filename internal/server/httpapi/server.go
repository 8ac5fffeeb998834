// Package httpapi exposes the studio over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/admin"
	"github.com/mzarzor/imagestudio/internal/server/history"
	"github.com/mzarzor/imagestudio/internal/server/lockout"
	"github.com/mzarzor/imagestudio/internal/server/notify"
	"github.com/mzarzor/imagestudio/internal/server/session"
	"github.com/mzarzor/imagestudio/internal/server/settings"
	"github.com/mzarzor/imagestudio/internal/server/studio"
	"github.com/mzarzor/imagestudio/internal/server/users"
)

// HTTPServer wires the state slices and services into routes.
type HTTPServer struct {
	address   string
	logger    logging.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
	store     kvstore.Store

	sessions      *session.Manager
	registry      *users.Registry
	adminAuth     *admin.Authenticator
	guard         *lockout.Guard
	studio        *studio.Service
	history       *history.Log
	notifications *notify.Queue
	settings      *settings.Manager
}

func NewHTTPServer(
	address string,
	logger logging.Logger,
	secretKey string,
	tokenTTL time.Duration,
	store kvstore.Store,
	sessions *session.Manager,
	registry *users.Registry,
	adminAuth *admin.Authenticator,
	guard *lockout.Guard,
	st *studio.Service,
	hist *history.Log,
	queue *notify.Queue,
	set *settings.Manager,
) *HTTPServer {
	return &HTTPServer{
		address:       address,
		logger:        logger.With("module", "http_server"),
		jwtSecret:     []byte(secretKey),
		tokenTTL:      tokenTTL,
		store:         store,
		sessions:      sessions,
		registry:      registry,
		adminAuth:     adminAuth,
		guard:         guard,
		studio:        st,
		history:       hist,
		notifications: queue,
		settings:      set,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	api.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/verify-otp", s.handleVerifyOTP).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/site-config", s.handleGetSiteConfig).Methods(http.MethodGet)

	api.HandleFunc("/admin/login", s.handleAdminLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/biometric", s.handleAdminBiometric).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	authed.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	authed.HandleFunc("/tools/{tool}", s.handleTool).Methods(http.MethodPost)
	authed.HandleFunc("/history", s.handleHistoryList).Methods(http.MethodGet)
	authed.HandleFunc("/history/export", s.handleHistoryExport).Methods(http.MethodGet)
	authed.HandleFunc("/history/{id}", s.handleHistoryDelete).Methods(http.MethodDelete)
	authed.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/read", s.handleMarkAllRead).Methods(http.MethodPost)
	authed.HandleFunc("/notifications/dismiss-toast", s.handleDismissToast).Methods(http.MethodPost)
	authed.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	authed.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)
	authed.HandleFunc("/language", s.handleGetLanguage).Methods(http.MethodGet)
	authed.HandleFunc("/language", s.handlePutLanguage).Methods(http.MethodPut)

	adminOnly := api.NewRoute().Subrouter()
	adminOnly.Use(s.authMiddleware, s.adminMiddleware)
	adminOnly.HandleFunc("/admin/lockout", s.handleLockoutState).Methods(http.MethodGet)
	adminOnly.HandleFunc("/admin/credentials", s.handleUpdateAdminCredentials).Methods(http.MethodPut)
	adminOnly.HandleFunc("/admin/site-config", s.handlePutSiteConfig).Methods(http.MethodPut)
	adminOnly.HandleFunc("/admin/ban", s.handleBan).Methods(http.MethodPost)
	adminOnly.HandleFunc("/admin/unban", s.handleUnban).Methods(http.MethodPost)
	adminOnly.HandleFunc("/admin/users", s.handleListUsers).Methods(http.MethodGet)
	adminOnly.HandleFunc("/admin/reset", s.handleReset).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// --- response helpers ---

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	RetryAt string `json:"retry_at,omitempty"`
}

// writeError maps service errors onto HTTP statuses. An active lockout is
// 423 Locked with the retry instant; everything unexpected collapses into a
// generic 500 so internals never leak.
func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	var blocked *lockout.BlockedError
	switch {
	case errors.As(err, &blocked):
		s.writeJSON(w, http.StatusLocked, errorResponse{
			Error:   "too many failed attempts",
			RetryAt: blocked.RetryAt.Format(time.RFC3339),
		})
	case errors.Is(err, common.ErrorInvalidCredential),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorUsernameTaken),
		errors.Is(err, common.ErrorEmailTaken),
		errors.Is(err, common.ErrorEmailBanned),
		errors.Is(err, common.ErrorPasswordMismatch),
		errors.Is(err, common.ErrInvalidOTP),
		errors.Is(err, common.ErrOTPExpired),
		errors.Is(err, common.ErrorEmptyPrompt):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
