package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/openvarco/varco/internal/auth"
	"github.com/openvarco/varco/internal/varco/service"
)

// requestTimeout bounds every storage round-trip made on behalf of one
// request, so a stuck backend surfaces as an error instead of a hang.
const requestTimeout = 5 * time.Second

type Dependencies struct {
	Logger            *log.Logger
	Addr              string
	AccessService     *service.AccessService
	ValidationService *service.ValidationService
	ScannerService    *service.ScannerService
	Auth              *auth.Manager
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	router     *mux.Router
	access     *service.AccessService
	validation *service.ValidationService
	scanners   *service.ScannerService
	auth       *auth.Manager
}

func NewServer(d Dependencies) *Server {
	r := mux.NewRouter()

	s := &Server{
		logger:     d.Logger,
		router:     r,
		access:     d.AccessService,
		validation: d.ValidationService,
		scanners:   d.ScannerService,
		auth:       d.Auth,
	}

	// Zone-scanner surface (unauthenticated).
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/validate/{zone}", s.handleValidate).Methods(http.MethodPost)
	r.HandleFunc("/v1/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)

	// Management surface (operator bearer token).
	r.HandleFunc("/v1/login", s.handleLogin).Methods(http.MethodPost)
	r.Handle("/v1/logout", s.requireAuth(http.HandlerFunc(s.handleLogout))).Methods(http.MethodPost)
	r.Handle("/v1/codes", s.requireAuth(http.HandlerFunc(s.handleCreateCode))).Methods(http.MethodPost)
	r.Handle("/v1/codes", s.requireAuth(http.HandlerFunc(s.handleListCodes))).Methods(http.MethodGet)
	r.Handle("/v1/codes/{code}/zones/{zone}/toggle", s.requireAuth(http.HandlerFunc(s.handleToggleZone))).Methods(http.MethodPost)
	r.Handle("/v1/codes/{code}/zones/{zone}", s.requireAuth(http.HandlerFunc(s.handleSetZone))).Methods(http.MethodPut)
	r.Handle("/v1/codes/{code}", s.requireAuth(http.HandlerFunc(s.handleDeleteCode))).Methods(http.MethodDelete)
	r.Handle("/v1/scanners", s.requireAuth(http.HandlerFunc(s.handleListScanners))).Methods(http.MethodGet)

	handler := loggingMiddleware(d.Logger, r)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
