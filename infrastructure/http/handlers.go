package http

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/runtime"
	"chat-relay/services"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type messageResponse struct {
	ID        string  `json:"id"`
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Text      string  `json:"text"`
	File      *string `json:"file"`
	CreatedAt string  `json:"createdAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	identity, token, err := s.authService.Register(req.Username, req.Password)
	if err != nil {
		if goerrors.Is(err, errors.ErrUserAlreadyExists) {
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		http.Error(w, "invalid username or password", http.StatusBadRequest)
		return
	}

	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]string{"id": identity.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	identity, token, err := s.authService.Login(req.Username, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	s.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"id": identity.ID})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.setTokenCookie(w, "")
	writeJSON(w, http.StatusOK, "ok")
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := s.resolver.Resolve(r.Header)
	if err != nil {
		http.Error(w, "no token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: identity.ID, Username: identity.Username})
}

func (s *Server) handlePeople(w http.ResponseWriter, _ *http.Request) {
	people, err := s.chatService.People()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(people, func(item domain.Identity, _ int) userResponse {
		return userResponse{UserID: item.ID, Username: item.Username}
	}))
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	identity, err := s.resolver.Resolve(r.Header)
	if err != nil {
		http.Error(w, "no token", http.StatusUnauthorized)
		return
	}

	otherID := r.PathValue("userId")
	messages, err := s.chatService.History(identity.ID, otherID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(messages, func(item domain.Message, _ int) messageResponse {
		var file *string
		if item.File != "" {
			file = &item.File
		}
		return messageResponse{
			ID:        item.ID.String(),
			Sender:    item.Sender,
			Recipient: item.Recipient,
			Text:      item.Text,
			File:      file,
			CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		}
	}))
}

// handleWebsocket upgrades the transport and hands the connection to a
// session. Identity resolution happens against the upgrade request headers;
// a failed resolution still completes the handshake, the session is simply
// held outside the registry.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	identity, resolveErr := s.resolver.Resolve(r.Header)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	if resolveErr != nil {
		s.log.Debug("Handshake resolution failed", "error", resolveErr)
	}

	session := runtime.NewSession(
		conn,
		identity,
		resolveErr == nil,
		s.cfg.Session,
		s.registry,
		s.presence,
		s.router,
		s.metrics,
		s.log,
	)
	session.Run()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := map[string]any{
		"live_connections": s.registry.Len(),
	}
	for name, value := range s.metrics.Snapshot() {
		stats[name] = value
	}
	writeJSON(w, http.StatusOK, stats)
}

// setTokenCookie mirrors the client contract: the bearer token lives in a
// "token" cookie, cleared by setting it empty.
func (s *Server) setTokenCookie(w http.ResponseWriter, token services.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("Response encode failed", "error", err)
	}
}
