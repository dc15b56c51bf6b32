// Package httpapi is the HTTP JSON boundary of the identity core:
// session issuing, the account directory, and the role consensus
// operations, behind bearer-token middleware. External collaborators
// (interaction bookkeeping, surveys, exports) consume these routes; none
// of their state lives here.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patchmemory/kindmesh/internal/logging"
	"github.com/patchmemory/kindmesh/internal/server/models"
	"github.com/patchmemory/kindmesh/internal/server/services"
)

// Directory is the slice of the directory service the transport needs.
type Directory interface {
	CreateAccount(ctx context.Context, creatorHandle, handle, rawPassword string) (*models.Account, error)
	Lookup(ctx context.Context, handle string) (*models.Account, error)
	ListAccounts(ctx context.Context, role *models.Role) ([]models.Account, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// Consensus covers the role transitions.
type Consensus interface {
	Promote(ctx context.Context, actorHandle, targetHandle string) (*models.Account, error)
	CastDemotionVote(ctx context.Context, voterHandle, targetHandle string) (*services.VoteResult, error)
}

// Authenticator validates login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, handle, rawPassword string) (*models.Account, error)
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	address       string
	logger        logging.Logger
	directory     Directory
	consensus     Consensus
	authenticator Authenticator
	db            *sql.DB
	jwtSecret     []byte
	tokenValidity time.Duration
	registry      *prometheus.Registry
	metrics       *metrics
}

// NewServer wires the transport over the three services. db is used for
// the health check only.
func NewServer(address string, l logging.Logger, d Directory, c Consensus, a Authenticator, db *sql.DB, secretKey string, tokenValidity time.Duration) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		address:       address,
		logger:        l.With("module", "http_server"),
		directory:     d,
		consensus:     c,
		authenticator: a,
		db:            db,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
		registry:      registry,
		metrics:       newMetrics(registry),
	}
}

func (s *Server) router() http.Handler {
	router := httprouter.New()

	router.POST("/api/v1/session", s.instrument("/api/v1/session", s.createSession))

	router.POST("/api/v1/accounts", s.instrument("/api/v1/accounts", s.withAuth(s.createAccount)))
	router.GET("/api/v1/accounts", s.instrument("/api/v1/accounts", s.withAuth(s.listAccounts)))
	router.GET("/api/v1/accounts/:handle", s.instrument("/api/v1/accounts/:handle", s.withAuth(s.getAccount)))
	router.GET("/api/v1/roles/:role/count", s.instrument("/api/v1/roles/:role/count", s.withAuth(s.countRole)))
	router.POST("/api/v1/accounts/:handle/promotion", s.instrument("/api/v1/accounts/:handle/promotion", s.withAuth(s.promote)))
	router.POST("/api/v1/accounts/:handle/demotion-votes", s.instrument("/api/v1/accounts/:handle/demotion-votes", s.withAuth(s.castDemotionVote)))

	router.GET("/healthz", s.healthz)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "health check failed", "error", err.Error())
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
