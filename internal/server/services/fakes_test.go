package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/dbx"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/models"
	"github.com/patchmemory/kindmesh/internal/server/repositories/accounts"
	"github.com/patchmemory/kindmesh/internal/server/repositories/edges"
	"github.com/patchmemory/kindmesh/internal/server/repositories/votes"
)

// fakeStore is an in-memory stand-in for the graph store with the same
// observable semantics as the Postgres repositories: handle uniqueness,
// not-found sentinels, idempotent vote casting.
type fakeStore struct {
	accounts map[string]*models.Account // keyed by ID
	edges    []models.Edge
	votes    map[string][]string // targetID -> voter IDs in cast order
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*models.Account),
		votes:    make(map[string][]string),
	}
}

func (s *fakeStore) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *fakeStore) byHandle(handle string) *models.Account {
	for _, a := range s.accounts {
		if a.Handle == handle {
			return a
		}
	}
	return nil
}

type fakeAccountsRepo struct{ s *fakeStore }

func (f *fakeAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if f.s.byHandle(account.Handle) != nil {
		return nil, common.ErrDuplicateHandle
	}
	if account.ID == "" {
		account.ID = f.s.newID()
	}
	account.CreatedAt = time.Now()
	cp := *account
	f.s.accounts[account.ID] = &cp
	return account, nil
}

func (f *fakeAccountsRepo) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	a := f.s.byHandle(handle)
	if a == nil {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountsRepo) List(ctx context.Context, role *models.Role) ([]models.Account, error) {
	var out []models.Account
	for _, a := range f.s.accounts {
		if role == nil || a.Role == *role {
			out = append(out, *a)
		}
	}
	slices.SortFunc(out, func(a, b models.Account) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (f *fakeAccountsRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	n := 0
	for _, a := range f.s.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeAccountsRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	a, ok := f.s.accounts[id]
	if !ok {
		return common.ErrNotFound
	}
	a.Role = role
	return nil
}

type fakeEdgesRepo struct{ s *fakeStore }

func (f *fakeEdgesRepo) Create(ctx context.Context, edge *models.Edge) (*models.Edge, error) {
	if edge.ID == "" {
		edge.ID = f.s.newID()
	}
	edge.CreatedAt = time.Now()
	f.s.edges = append(f.s.edges, *edge)
	return edge, nil
}

func (f *fakeEdgesRepo) ListByTarget(ctx context.Context, targetID string, kind models.EdgeKind) ([]models.Edge, error) {
	var out []models.Edge
	for _, e := range f.s.edges {
		if e.TargetID == targetID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeVotesRepo struct{ s *fakeStore }

func (f *fakeVotesRepo) Cast(ctx context.Context, voterID, targetID string) error {
	if slices.Contains(f.s.votes[targetID], voterID) {
		return nil
	}
	f.s.votes[targetID] = append(f.s.votes[targetID], voterID)
	return nil
}

func (f *fakeVotesRepo) CountForTarget(ctx context.Context, targetID string) (int, error) {
	return len(f.s.votes[targetID]), nil
}

func (f *fakeVotesRepo) VoterIDs(ctx context.Context, targetID string) ([]string, error) {
	return slices.Clone(f.s.votes[targetID]), nil
}

func (f *fakeVotesRepo) ClearForTarget(ctx context.Context, targetID string) error {
	delete(f.s.votes, targetID)
	return nil
}

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository      { return &fakeAccountsRepo{s: m.s} }
func (m *fakeRepoManager) Edges(db dbx.DBTX) edges.Repository            { return &fakeEdgesRepo{s: m.s} }
func (m *fakeRepoManager) Votes(db dbx.DBTX) votes.Repository            { return &fakeVotesRepo{s: m.s} }

// testEnv wires the three services over the fake store and a sqlmock DB
// that accepts any number of transactions.
type testEnv struct {
	store     *fakeStore
	directory *DirectoryService
	consensus *ConsensusService
	auth      *AuthenticatorService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvCfg(t, nil)
}

// newTestEnvCfg builds the env with defaults, letting the test tweak the
// config before the services are constructed.
func newTestEnvCfg(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// The fakes ignore the DBTX; the mock only has to tolerate the
	// transaction begin/commit traffic of the services under test.
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 64; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if mutate != nil {
		mutate(cfg)
	}

	store := newFakeStore()
	rm := &fakeRepoManager{s: store}

	return &testEnv{
		store:     store,
		directory: NewDirectoryService(db, rm, cfg),
		consensus: NewConsensusService(db, rm, cfg),
		auth:      NewAuthenticatorService(db, rm, cfg),
	}
}

// seedAndFirstAdmin provisions the seed account and lets it create the
// first (bootstrap-promoted) account.
func (e *testEnv) seedAndFirstAdmin(t *testing.T, ctx context.Context, adminHandle string) *models.Account {
	t.Helper()
	if _, err := e.directory.EnsureSeed(ctx, "hello", "seed-password"); err != nil {
		t.Fatalf("EnsureSeed error: %v", err)
	}
	admin, err := e.directory.CreateAccount(ctx, "hello", adminHandle, "first-admin-pass")
	if err != nil {
		t.Fatalf("CreateAccount(%s) error: %v", adminHandle, err)
	}
	return admin
}
