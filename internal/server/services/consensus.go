package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/dbx"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/models"
	"github.com/patchmemory/kindmesh/internal/server/repositories/repomanager"
)

// Policy floors. A deployment may raise the quorum or the admin floor
// through config, never lower them below these values.
const (
	minDemotionQuorum = 2
	minAdminFloor     = 1
)

// ConsensusService owns every role transition after account creation:
// explicit promotion by an admin, and demotion through the multi-party
// vote. The seed role is terminal in both directions.
type ConsensusService struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	quorum        int
	minimumAdmins int
}

// VoteResult reports the outcome of casting a demotion vote: the number
// of distinct votes now standing against the target, and whether the
// demotion executed in the same operation.
type VoteResult struct {
	Votes   int
	Demoted bool
}

// NewConsensusService constructs a ConsensusService from repositories
// and server config.
func NewConsensusService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *ConsensusService {
	quorum := cfg.DemotionQuorum
	if quorum < minDemotionQuorum {
		quorum = minDemotionQuorum
	}
	floor := cfg.MinimumAdmins
	if floor < minAdminFloor {
		floor = minAdminFloor
	}
	return &ConsensusService{db: db, repos: m, quorum: quorum, minimumAdmins: floor}
}

// quorumReached is the demotion rule: enough distinct confirmations, and
// removing the target still leaves the admin floor intact.
func (s *ConsensusService) quorumReached(votes, adminCount int) bool {
	return votes >= s.quorum && adminCount-1 >= s.minimumAdmins
}

// Promote raises target to admin on behalf of actor.
//
// The actor must currently be an admin. A target that is already an
// admin, or is the seed account, is ErrInvalidState — a reportable
// condition, not a silent no-op. Role change and promotion edge commit
// together.
func (s *ConsensusService) Promote(ctx context.Context, actorHandle, targetHandle string) (*models.Account, error) {
	var target *models.Account
	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repos.Accounts(tx)
		edgeRepo := s.repos.Edges(tx)

		actor, err := accountRepo.GetByHandle(ctx, actorHandle)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleAdmin {
			return common.ErrForbidden
		}

		target, err = accountRepo.GetByHandle(ctx, targetHandle)
		if err != nil {
			return err
		}
		switch target.Role {
		case models.RoleAdmin:
			return fmt.Errorf("%w: %q is already an admin", common.ErrInvalidState, targetHandle)
		case models.RoleSeed:
			return fmt.Errorf("%w: the seed account cannot change role", common.ErrInvalidState)
		}

		if err := accountRepo.UpdateRole(ctx, target.ID, models.RoleAdmin); err != nil {
			return err
		}
		target.Role = models.RoleAdmin

		_, err = edgeRepo.Create(ctx, &models.Edge{
			Kind:     models.EdgePromoted,
			SourceID: actor.ID,
			TargetID: target.ID,
		})
		return err
	})
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return nil, common.ErrContention
		}
		return nil, err
	}

	return target, nil
}

// CastDemotionVote records voter's confirmation that target should lose
// the admin role, then evaluates the quorum rule from the same
// consistent read.
//
// Casting an existing (voter, target) vote again returns the standing
// count unchanged. When the quorum is reached and at least one admin
// remains after removal, the demotion executes atomically with the vote:
// the target becomes a member, one demotion edge is written per distinct
// voter, and all votes against the target are cleared. When the quorum
// is reached but execution would empty the admin set, the vote still
// commits and the call returns ErrQuorumBlockedByMinimumAdmins.
func (s *ConsensusService) CastDemotionVote(ctx context.Context, voterHandle, targetHandle string) (*VoteResult, error) {
	result := &VoteResult{}
	blocked := false

	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repos.Accounts(tx)
		edgeRepo := s.repos.Edges(tx)
		voteRepo := s.repos.Votes(tx)

		voter, err := accountRepo.GetByHandle(ctx, voterHandle)
		if err != nil {
			return err
		}
		if voter.Role != models.RoleAdmin {
			return common.ErrForbidden
		}

		target, err := accountRepo.GetByHandle(ctx, targetHandle)
		if err != nil {
			return err
		}
		if target.Role != models.RoleAdmin {
			return fmt.Errorf("%w: %q is not an admin", common.ErrInvalidState, targetHandle)
		}
		if voter.ID == target.ID {
			return fmt.Errorf("%w: admins cannot vote to demote themselves", common.ErrInvalidState)
		}

		if err := voteRepo.Cast(ctx, voter.ID, target.ID); err != nil {
			return err
		}

		votes, err := voteRepo.CountForTarget(ctx, target.ID)
		if err != nil {
			return err
		}
		result.Votes = votes

		if votes < s.quorum {
			return nil
		}

		adminCount, err := accountRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if !s.quorumReached(votes, adminCount) {
			// The vote stands but the demotion is withheld: executing it
			// would leave fewer than minimumAdmins admins.
			blocked = true
			return nil
		}

		voterIDs, err := voteRepo.VoterIDs(ctx, target.ID)
		if err != nil {
			return err
		}

		if err := accountRepo.UpdateRole(ctx, target.ID, models.RoleMember); err != nil {
			return err
		}
		for _, id := range voterIDs {
			if _, err := edgeRepo.Create(ctx, &models.Edge{
				Kind:     models.EdgeDemoted,
				SourceID: id,
				TargetID: target.ID,
			}); err != nil {
				return err
			}
		}
		if err := voteRepo.ClearForTarget(ctx, target.ID); err != nil {
			return err
		}

		result.Demoted = true
		return nil
	})
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return nil, common.ErrContention
		}
		return nil, err
	}

	if blocked {
		return result, common.ErrQuorumBlockedByMinimumAdmins
	}
	return result, nil
}
