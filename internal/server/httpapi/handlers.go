package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/server/auth"
	"github.com/patchmemory/kindmesh/internal/server/models"
)

var errMissingToken = fmt.Errorf("%w: missing bearer token", common.ErrInvalidToken)

type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string      `json:"token"`
	Handle string      `json:"handle"`
	Role   models.Role `json:"role"`
}

// accountResponse deliberately omits the password hash and the internal
// account ID.
type accountResponse struct {
	Handle    string      `json:"handle"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type voteResponse struct {
	Votes   int  `json:"votes"`
	Demoted bool `json:"demoted"`
	Blocked bool `json:"blocked,omitempty"`
}

type roleCountResponse struct {
	Role  models.Role `json:"role"`
	Count int         `json:"count"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{Handle: a.Handle, Role: a.Role, CreatedAt: a.CreatedAt}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service sentinels onto HTTP statuses. Unknown
// errors are logged and reported opaquely.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	retryable := false

	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidCredential):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrAuthenticationFailed), errors.Is(err, common.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateHandle), errors.Is(err, common.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, common.ErrContention):
		status = http.StatusConflict
		retryable = true
	default:
		s.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Retryable: retryable})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.authenticator.Authenticate(r.Context(), req.Handle, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(account.Handle, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "session issued", "handle", account.Handle)
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Handle: account.Handle, Role: account.Role})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.directory.CreateAccount(r.Context(), actorHandle(r.Context()), req.Handle, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "account created", "handle", account.Handle, "role", string(account.Role), "creator", actorHandle(r.Context()))
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var filter *models.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := models.Role(raw)
		if !role.Valid() {
			s.writeError(w, r, fmt.Errorf("%w: unknown role %q", common.ErrValidation, raw))
			return
		}
		filter = &role
	}

	list, err := s.directory.ListAccounts(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(list))
	for i := range list {
		out = append(out, toAccountResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	account, err := s.directory.Lookup(r.Context(), params.ByName("handle"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) countRole(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	role := models.Role(params.ByName("role"))
	if !role.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: unknown role %q", common.ErrValidation, params.ByName("role")))
		return
	}

	count, err := s.directory.CountByRole(r.Context(), role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roleCountResponse{Role: role, Count: count})
}

func (s *Server) promote(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	target := params.ByName("handle")

	account, err := s.consensus.Promote(r.Context(), actorHandle(r.Context()), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.promotionsTotal.Inc()
	s.logger.Info(r.Context(), "promoted to admin", "handle", account.Handle, "actor", actorHandle(r.Context()))
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) castDemotionVote(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	target := params.ByName("handle")

	result, err := s.consensus.CastDemotionVote(r.Context(), actorHandle(r.Context()), target)
	if err != nil {
		if errors.Is(err, common.ErrQuorumBlockedByMinimumAdmins) {
			// The vote is recorded; the demotion waits for a replacement
			// admin.
			s.metrics.blockedQuorumsTotal.Inc()
			s.logger.Info(r.Context(), "demotion quorum blocked by admin floor", "target", target, "votes", result.Votes)
			writeJSON(w, http.StatusAccepted, voteResponse{Votes: result.Votes, Blocked: true})
			return
		}
		s.writeError(w, r, err)
		return
	}

	if result.Demoted {
		s.metrics.demotionsTotal.Inc()
		s.logger.Info(r.Context(), "admin demoted by quorum", "target", target, "votes", result.Votes)
	}
	writeJSON(w, http.StatusOK, voteResponse{Votes: result.Votes, Demoted: result.Demoted})
}
