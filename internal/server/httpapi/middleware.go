package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/patchmemory/kindmesh/internal/server/auth"
)

type ctxKey string

const actorHandleKey ctxKey = "actorHandle"

// actorHandle returns the handle the bearer token was issued for. Empty
// outside of withAuth-wrapped handlers.
func actorHandle(ctx context.Context) string {
	handle, _ := ctx.Value(actorHandleKey).(string)
	return handle
}

// withAuth verifies the Authorization bearer token and stores the
// account handle in the request context. Roles are not read from the
// token; every handler re-reads them from the store.
func (s *Server) withAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, errMissingToken)
			return
		}

		handle, err := auth.GetHandleFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), actorHandleKey, handle)
		next(w, r.WithContext(ctx), params)
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument counts and times the request under a fixed route label, so
// path parameters do not explode the metric cardinality.
func (s *Server) instrument(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r, params)

		s.metrics.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	}
}
