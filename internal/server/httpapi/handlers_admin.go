package httpapi

import (
	"net/http"
	"time"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/server/auth"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

func (s *HTTPServer) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.adminAuth.Login(r.Context(), req.Email, req.Password, req.Code); err != nil {
		s.writeError(w, err)
		return
	}

	s.finishAdminLogin(w, r, req.Email)
}

type biometricRequest struct {
	Capture string `json:"capture"`
}

func (s *HTTPServer) handleAdminBiometric(w http.ResponseWriter, r *http.Request) {
	var req biometricRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.adminAuth.BiometricLogin(r.Context(), req.Capture); err != nil {
		s.writeError(w, err)
		return
	}

	s.finishAdminLogin(w, r, "")
}

func (s *HTTPServer) finishAdminLogin(w http.ResponseWriter, r *http.Request, email string) {
	token, err := auth.GenerateToken("admin", true, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.logger.Error(r.Context(), "token mint failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	identity := &models.Identity{
		ID:      "admin",
		Name:    "Administrator",
		Email:   email,
		IsAdmin: true,
		LoginAt: time.Now(),
	}
	if err := s.sessions.SetIdentity(r.Context(), identity); err != nil {
		s.logger.Error(r.Context(), "session write-back failed", "error", err)
	}

	s.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, Identity: identity})
}

type lockoutResponse struct {
	Attempts         int    `json:"attempts"`
	Blocked          bool   `json:"blocked"`
	BlockUntil       string `json:"block_until,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

func (s *HTTPServer) handleLockoutState(w http.ResponseWriter, r *http.Request) {
	state := s.guard.State()
	resp := lockoutResponse{
		Attempts:         state.Attempts,
		Blocked:          state.Blocked(time.Now()),
		RemainingSeconds: int(s.guard.Remaining().Seconds()),
	}
	if state.BlockUntil != nil {
		resp.BlockUntil = state.BlockUntil.Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type adminCredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleUpdateAdminCredentials(w http.ResponseWriter, r *http.Request) {
	var req adminCredentialsRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.adminAuth.UpdateCredentials(r.Context(), req.Email, req.Password); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *HTTPServer) handlePutSiteConfig(w http.ResponseWriter, r *http.Request) {
	var req models.SiteConfig
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.settings.UpdateSiteConfig(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

type banRequest struct {
	Email string `json:"email"`
}

func (s *HTTPServer) handleBan(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.registry.Ban(r.Context(), req.Email); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"banned": s.registry.BannedEmails(r.Context())})
}

func (s *HTTPServer) handleUnban(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.registry.Unban(r.Context(), req.Email); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"banned": s.registry.BannedEmails(r.Context())})
}

// userView is the listing DTO. Password hashes never leave the server.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// handleReset clears the session, the history, the notification queue, and
// the preference slots. Lockout state, admin identity, and the user lists are
// kept: a reset is not a way around the guard or the banned list.
func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SetIdentity(r.Context(), nil); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.history.Clear(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.notifications.Clear()

	if err := kvstore.PurgeKeys(r.Context(), s.store,
		kvstore.KeyUserSettings, kvstore.KeyLanguage, kvstore.KeySiteConfig); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "studio data reset")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list := s.registry.Users(r.Context())
	out := make([]userView, 0, len(list))
	for _, u := range list {
		out = append(out, userView{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Verified:  u.Verified,
			CreatedAt: u.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": out, "banned": s.registry.BannedEmails(r.Context())})
}
