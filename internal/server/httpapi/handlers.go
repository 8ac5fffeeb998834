package httpapi

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mzarzor/imagestudio/internal/export"
	"github.com/mzarzor/imagestudio/internal/server/auth"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// --- signup / login ---

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if !s.settings.SiteConfig(r.Context()).SignupsEnabled {
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "signups disabled"})
		return
	}

	s.logger.Info(r.Context(), "Signup request", "email", req.Email)

	if err := s.registry.Signup(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "verification code sent"})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type tokenResponse struct {
	AccessToken string           `json:"access_token"`
	Identity    *models.Identity `json:"identity,omitempty"`
}

func (s *HTTPServer) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.registry.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.finishLogin(w, r, user, false)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.registry.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.finishLogin(w, r, user, false)
}

// finishLogin mints a token, updates the session slice, and replies with the
// pair. Shared by login, OTP verification, and the admin flows.
func (s *HTTPServer) finishLogin(w http.ResponseWriter, r *http.Request, user *models.User, isAdmin bool) {
	token, err := auth.GenerateToken(user.ID, isAdmin, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.logger.Error(r.Context(), "token mint failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	identity := &models.Identity{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: isAdmin,
		LoginAt: time.Now(),
	}
	if err := s.sessions.SetIdentity(r.Context(), identity); err != nil {
		s.logger.Error(r.Context(), "session write-back failed", "error", err)
	}

	s.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, Identity: identity})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SetIdentity(r.Context(), nil); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"identity": s.sessions.Identity()})
}

// --- studio ---

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

func (s *HTTPServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := s.studio.Generate(r.Context(), req.Prompt, req.Model)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, item)
}

type toolRequest struct {
	Image  string `json:"image"` // base64-encoded input bytes
	Prompt string `json:"prompt,omitempty"`
}

func (s *HTTPServer) handleTool(w http.ResponseWriter, r *http.Request) {
	tool := mux.Vars(r)["tool"]

	var req toolRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid image encoding"})
		return
	}

	item, err := s.studio.ApplyTool(r.Context(), tool, image, req.Prompt)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, item)
}

// --- history ---

func (s *HTTPServer) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"items": s.history.Items()})
}

func (s *HTTPServer) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	exp, err := export.NewExporter(format)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=history."+exp.Extension())
	if err := exp.Export(s.history.Items(), w); err != nil {
		s.logger.Error(r.Context(), "history export error", "error", err)
	}
}

func (s *HTTPServer) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.history.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- notifications ---

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"notifications": s.notifications.All(),
		"unread":        s.notifications.Unread(),
		"active_toast":  s.notifications.ActiveToast(),
	})
}

func (s *HTTPServer) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	s.notifications.MarkAllRead()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	s.notifications.DismissToast()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- settings ---

func (s *HTTPServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings.UserSettings(r.Context()))
}

func (s *HTTPServer) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UserSettings
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.settings.UpdateUserSettings(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *HTTPServer) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"language": s.settings.Language(r.Context())})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (s *HTTPServer) handlePutLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeBody(r, &req); err != nil || req.Language == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.settings.SetLanguage(r.Context(), req.Language); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

func (s *HTTPServer) handleGetSiteConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings.SiteConfig(r.Context()))
}
