// Package server exposes the REST API and the realtime websocket endpoint.
package server

import (
	"context"
	"dm-lab/contract"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Realtime is the part of the hub the websocket endpoint drives.
type Realtime interface {
	Authenticate(token string) (string, error)
	Connect(connectionID, identityID string, sink contract.EventSink)
	Join(connectionID, name string, sink contract.EventSink) bool
	Leave(connectionID, name string)
	Disconnect(connectionID string)
	Stats() contract.RegistryStats
}

type HealthReporter interface {
	Health() (workers.HealthSnapshot, bool)
	QueueLength() int
}

type Options struct {
	AllowedOrigins       []string
	SecureCookie         bool
	CookieDuration       time.Duration
	ConnectionBufferSize int
	WriteTimeout         time.Duration
}

type Server struct {
	log             *slog.Logger
	authService     services.IAuthService
	messageService  services.IMessageService
	contactService  services.IContactService
	chatListService services.IChatListService
	directory       contract.IdentityDirectory
	verifier        contract.TokenVerifier
	realtime        Realtime
	health          HealthReporter
	upgrader        websocket.Upgrader
	options         Options
	baseCtx         context.Context
}

func NewServer(
	baseCtx context.Context,
	log *slog.Logger,
	authService services.IAuthService,
	messageService services.IMessageService,
	contactService services.IContactService,
	chatListService services.IChatListService,
	directory contract.IdentityDirectory,
	verifier contract.TokenVerifier,
	realtime Realtime,
	health HealthReporter,
	options Options,
) *Server {
	s := &Server{
		log:             log,
		authService:     authService,
		messageService:  messageService,
		contactService:  contactService,
		chatListService: chatListService,
		directory:       directory,
		verifier:        verifier,
		realtime:        realtime,
		health:          health,
		options:         options,
		baseCtx:         baseCtx,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Routes builds the full handler tree, middlewares included.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", s.HandleRegister)
	mux.HandleFunc("POST /api/users/login", s.HandleLogin)
	mux.HandleFunc("GET /api/users/logout", s.HandleLogout)
	mux.HandleFunc("GET /api/users/me", s.RequireAuth(s.HandleMe))
	mux.HandleFunc("GET /api/users/search", s.RequireAuth(s.HandleSearchUser))
	mux.HandleFunc("GET /api/users/chatlist", s.RequireAuth(s.HandleChatList))

	mux.HandleFunc("POST /api/messages/{id}", s.RequireAuth(s.HandleSendMessage))
	mux.HandleFunc("GET /api/messages/{id}", s.RequireAuth(s.HandleListMessages))
	mux.HandleFunc("PUT /api/messages/{id}", s.RequireAuth(s.HandleEditMessage))
	mux.HandleFunc("DELETE /api/messages/{id}", s.RequireAuth(s.HandleDeleteMessage))
	mux.HandleFunc("PATCH /api/messages/{id}/read", s.RequireAuth(s.HandleMarkRead))
	mux.HandleFunc("GET /api/messages/{id}/search", s.RequireAuth(s.HandleSearchMessages))

	mux.HandleFunc("POST /api/contacts", s.RequireAuth(s.HandleCreateContact))
	mux.HandleFunc("GET /api/contacts", s.RequireAuth(s.HandleListContacts))
	mux.HandleFunc("GET /api/contacts/{id}", s.RequireAuth(s.HandleGetContact))
	mux.HandleFunc("PUT /api/contacts/{id}", s.RequireAuth(s.HandleRenameContact))
	mux.HandleFunc("DELETE /api/contacts/{id}", s.RequireAuth(s.HandleDeleteContact))

	mux.HandleFunc("GET /ws", s.HandleWebsocket)
	mux.HandleFunc("GET /healthz", s.HandleHealth)

	return s.CORS(s.Logging(mux))
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.originAllowed(origin)
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.options.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.options.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
