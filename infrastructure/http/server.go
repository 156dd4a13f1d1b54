// Package http exposes the product over HTTP: account endpoints, message
// history, the people directory, attachment files, and the websocket
// upgrade that feeds the realtime runtime.
package http

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/services"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type Config struct {
	ClientOrigin  string
	UploadsDir    string
	SecureCookies bool
	LoginRate     rate.Limit
	LoginBurst    int
	Session       runtime.SessionConfig
}

type Server struct {
	log         *slog.Logger
	cfg         Config
	authService services.IAuthService
	chatService services.IChatService
	resolver    *auth.Resolver
	registry    contract.IRegistry
	presence    contract.IPresence
	router      *runtime.Router
	metrics     *observability.Metrics
	upgrader    websocket.Upgrader
	limiter     *ipRateLimiter
}

func NewServer(
	log *slog.Logger,
	cfg Config,
	authService services.IAuthService,
	chatService services.IChatService,
	resolver *auth.Resolver,
	registry contract.IRegistry,
	presence contract.IPresence,
	router *runtime.Router,
	metrics *observability.Metrics,
) *Server {
	s := &Server{
		log:         log,
		cfg:         cfg,
		authService: authService,
		chatService: chatService,
		resolver:    resolver,
		registry:    registry,
		presence:    presence,
		router:      router,
		metrics:     metrics,
		limiter:     newIPRateLimiter(cfg.LoginRate, cfg.LoginBurst),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.ClientOrigin == "*" || origin == cfg.ClientOrigin
		},
	}
	return s
}

// Handler assembles the route table. Auth endpoints are rate limited per
// IP; everything is wrapped with CORS for the configured client origin.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.rateLimited(s.handleRegister))
	mux.HandleFunc("POST /login", s.rateLimited(s.handleLogin))
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /profile", s.handleProfile)
	mux.HandleFunc("GET /people", s.handlePeople)
	mux.HandleFunc("GET /messages/{userId}", s.handleMessages)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /uploads/",
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadsDir))))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)

	return s.cors(mux)
}
