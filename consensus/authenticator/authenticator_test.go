package authenticator

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/onflow/flow-attestation/consensus/notifications"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module/access"
	"github.com/onflow/flow-attestation/module/metrics"
	mockmodule "github.com/onflow/flow-attestation/module/mock"
	"github.com/onflow/flow-attestation/module/ratelimit"
	"github.com/onflow/flow-attestation/module/registry"
	"github.com/onflow/flow-attestation/module/signature"
	bstorage "github.com/onflow/flow-attestation/storage/badger"
	"github.com/onflow/flow-attestation/utils/unittest"
)

func TestAuthenticator(t *testing.T) {
	suite.Run(t, new(AuthenticatorSuite))
}

type AuthenticatorSuite struct {
	suite.Suite

	dir      string
	db       *badger.DB
	creator  common.Address
	admin    common.Address
	voters   []*signature.LocalSigner
	outsider *signature.LocalSigner
	registry *registry.Registry
	applier  *mockmodule.ResultApplier
	auth     *Authenticator
}

func (s *AuthenticatorSuite) SetupTest() {
	s.dir = unittest.TempDir(s.T())
	s.db = unittest.BadgerDB(s.T(), s.dir)

	s.creator = unittest.AddressFixture()
	s.admin = unittest.AddressFixture()
	s.voters = nil
	for i := 0; i < 5; i++ {
		s.voters = append(s.voters, signature.NewLocalSigner(unittest.PrivateKeyFixture(s.T())))
	}
	s.outsider = signature.NewLocalSigner(unittest.PrivateKeyFixture(s.T()))

	log := unittest.Logger()
	collector := metrics.NewNoopCollector()
	acl := s.acl()
	s.registry = registry.New(log, s.db, bstorage.NewTasks(collector, s.db), ratelimit.NewLimiter(log, s.db),
		ratelimit.NewManualPeriods(1), acl, collector, notifications.NewNoopConsumer(), 100)
	s.applier = mockmodule.NewResultApplier(s.T())

	s.auth = s.newAuthenticator(Config{ConfidenceThreshold: 75, RequiredQuorum: 3}, acl)
}

func (s *AuthenticatorSuite) newAuthenticator(config Config, acl *access.StaticAccessControl) *Authenticator {
	collector := metrics.NewNoopCollector()
	auth, err := New(
		unittest.Logger(),
		s.db,
		s.registry,
		signature.NewVerifier(),
		acl,
		s.applier,
		bstorage.NewResponses(s.db),
		bstorage.NewConsensusRecords(s.db),
		collector,
		notifications.NewNoopConsumer(),
		config,
	)
	s.Require().NoError(err)
	return auth
}

func (s *AuthenticatorSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
	s.Require().NoError(os.RemoveAll(s.dir))
}

func (s *AuthenticatorSuite) createTask() *attestation.Task {
	task, err := s.registry.CreateTask(unittest.DigestFixture(), unittest.DigestFixture(), 2, s.creator)
	s.Require().NoError(err)
	return task
}

func (s *AuthenticatorSuite) vote(voter *signature.LocalSigner, task *attestation.Task, outcome bool, score uint8) (*attestation.ConsensusStatus, error) {
	sig, err := voter.SignTask(task)
	s.Require().NoError(err)
	return s.auth.SubmitResponse(context.Background(), task.ID, task, sig, outcome, score, voter.Address())
}

// Quorum 3, threshold 75: scores 80, 90, 76 with outcomes true, true, false
// finalize the task with a positive outcome.
func (s *AuthenticatorSuite) TestScenarioMajorityFinalizes() {
	task := s.createTask()
	s.applier.On("ApplyResult", mock.Anything, task.ID, true).Return(nil).Once()

	status, err := s.vote(s.voters[0], task, true, 80)
	s.Require().NoError(err)
	s.Assert().False(status.Finalized)

	status, err = s.vote(s.voters[1], task, true, 90)
	s.Require().NoError(err)
	s.Assert().False(status.Finalized)

	status, err = s.vote(s.voters[2], task, false, 76)
	s.Require().NoError(err)
	s.Assert().True(status.Finalized)
	s.Assert().True(status.FinalOutcome)
	s.Assert().Equal(uint32(2), status.PositiveVotes)
	s.Assert().Equal(uint32(1), status.NegativeVotes)

	stored, err := s.auth.GetStatus(task.ID)
	s.Require().NoError(err)
	s.Assert().Equal(status, stored)

	unapplied, err := s.auth.Unapplied()
	s.Require().NoError(err)
	s.Assert().Empty(unapplied)
}

// Quorum 2, threshold 75: a vote with score 60 is refused and leaves the
// task open, a later vote of another voter is counted normally.
func (s *AuthenticatorSuite) TestScenarioInsufficientConfidence() {
	s.auth = s.newAuthenticator(Config{ConfidenceThreshold: 75, RequiredQuorum: 2}, s.acl())
	task := s.createTask()

	_, err := s.vote(s.voters[0], task, true, 60)
	s.Require().True(attestation.IsInsufficientConfidenceError(err))

	status, err := s.auth.GetStatus(task.ID)
	s.Require().NoError(err)
	s.Assert().False(status.Finalized)
	s.Assert().Zero(status.PositiveVotes + status.NegativeVotes)

	voted, err := s.auth.HasVoted(task.ID, s.voters[0].Address())
	s.Require().NoError(err)
	s.Assert().False(voted)

	status, err = s.vote(s.voters[1], task, true, 80)
	s.Require().NoError(err)
	s.Assert().False(status.Finalized)
	s.Assert().Equal(uint32(1), status.PositiveVotes)
}

// A manual override finalizes an open task regardless of the tally, and is
// refused on a finalized task.
func (s *AuthenticatorSuite) TestScenarioManualOverride() {
	task := s.createTask()

	_, err := s.vote(s.voters[0], task, true, 90)
	s.Require().NoError(err)

	s.applier.On("ApplyResult", mock.Anything, task.ID, false).Return(nil).Once()
	status, err := s.auth.ManualOverride(context.Background(), task.ID, false, s.admin)
	s.Require().NoError(err)
	s.Assert().True(status.Finalized)
	s.Assert().False(status.FinalOutcome)
	s.Assert().Equal(uint32(1), status.PositiveVotes)

	_, err = s.auth.ManualOverride(context.Background(), task.ID, true, s.admin)
	s.Assert().True(attestation.IsAlreadyFinalizedError(err))

	stored, err := s.auth.GetStatus(task.ID)
	s.Require().NoError(err)
	s.Assert().False(stored.FinalOutcome)
}

func (s *AuthenticatorSuite) TestManualOverride_Rejections() {
	task := s.createTask()

	_, err := s.auth.ManualOverride(context.Background(), task.ID, true, s.voters[0].Address())
	s.Assert().True(attestation.IsNotAuthorizedError(err))

	_, err = s.auth.ManualOverride(context.Background(), task.ID+100, true, s.admin)
	s.Assert().True(attestation.IsNotFoundError(err))
}

func (s *AuthenticatorSuite) TestDuplicateVote() {
	task := s.createTask()

	_, err := s.vote(s.voters[0], task, true, 80)
	s.Require().NoError(err)

	_, err = s.vote(s.voters[0], task, false, 99)
	s.Require().True(attestation.IsDuplicateVoteError(err))
	duplicate, ok := attestation.AsDuplicateVoteError(err)
	s.Require().True(ok)
	s.Assert().True(duplicate.FirstVote.Outcome)
	s.Assert().Equal(uint8(80), duplicate.FirstVote.Score)

	status, err := s.auth.GetStatus(task.ID)
	s.Require().NoError(err)
	s.Assert().Equal(uint32(1), status.PositiveVotes)
	s.Assert().Zero(status.NegativeVotes)
}

// A duplicate is reported even if the second signature is invalid.
func (s *AuthenticatorSuite) TestDuplicateVote_BeforeSignature() {
	task := s.createTask()

	_, err := s.vote(s.voters[0], task, true, 80)
	s.Require().NoError(err)

	_, err = s.auth.SubmitResponse(context.Background(), task.ID, task, make([]byte, signature.SignatureLen), true, 80, s.voters[0].Address())
	s.Assert().True(attestation.IsDuplicateVoteError(err))
}

func (s *AuthenticatorSuite) TestInvalidSignature() {
	task := s.createTask()

	// signed by another voter
	sig, err := s.voters[1].SignTask(task)
	s.Require().NoError(err)
	_, err = s.auth.SubmitResponse(context.Background(), task.ID, task, sig, true, 80, s.voters[0].Address())
	s.Assert().True(attestation.IsInvalidSignatureError(err))

	// signed over other content
	other := s.createTask()
	sig, err = s.voters[0].SignTask(other)
	s.Require().NoError(err)
	_, err = s.auth.SubmitResponse(context.Background(), task.ID, task, sig, true, 80, s.voters[0].Address())
	s.Assert().True(attestation.IsInvalidSignatureError(err))

	voted, err := s.auth.HasVoted(task.ID, s.voters[0].Address())
	s.Require().NoError(err)
	s.Assert().False(voted)
}

func (s *AuthenticatorSuite) TestNotAuthorizedVoter() {
	task := s.createTask()

	_, err := s.vote(s.outsider, task, true, 80)
	s.Assert().True(attestation.IsNotAuthorizedError(err))
}

func (s *AuthenticatorSuite) TestTaskMismatch() {
	task := s.createTask()

	tampered := *task
	tampered.AuxHash = unittest.DigestFixture()
	_, err := s.vote(s.voters[0], &tampered, true, 80)
	s.Assert().True(attestation.IsTaskMismatchError(err))

	sig, err := s.voters[0].SignTask(task)
	s.Require().NoError(err)
	_, err = s.auth.SubmitResponse(context.Background(), task.ID+1, task, sig, true, 80, s.voters[0].Address())
	s.Assert().True(attestation.IsTaskMismatchError(err))

	_, err = s.auth.SubmitResponse(context.Background(), task.ID, nil, sig, true, 80, s.voters[0].Address())
	s.Assert().True(attestation.IsTaskMismatchError(err))

	unknown := *task
	unknown.ID = task.ID + 50
	_, err = s.vote(s.voters[0], &unknown, true, 80)
	s.Assert().True(attestation.IsTaskMismatchError(err))
}

func (s *AuthenticatorSuite) TestScoreOutOfRange() {
	task := s.createTask()

	_, err := s.vote(s.voters[0], task, true, 101)
	s.Assert().True(attestation.IsInvalidInputError(err))

	_, err = s.vote(s.voters[0], task, true, 100)
	s.Assert().NoError(err)
}

// A tie at quorum yields a negative outcome.
func (s *AuthenticatorSuite) TestTieIsNegative() {
	s.auth = s.newAuthenticator(Config{ConfidenceThreshold: 75, RequiredQuorum: 2}, s.acl())
	task := s.createTask()
	s.applier.On("ApplyResult", mock.Anything, task.ID, false).Return(nil).Once()

	_, err := s.vote(s.voters[0], task, true, 80)
	s.Require().NoError(err)
	status, err := s.vote(s.voters[1], task, false, 80)
	s.Require().NoError(err)
	s.Assert().True(status.Finalized)
	s.Assert().False(status.FinalOutcome)
}

// Votes after finalization are recorded once, but the tally stays frozen
// and the result is not applied again.
func (s *AuthenticatorSuite) TestLateVotes() {
	task := s.createTask()
	s.applier.On("ApplyResult", mock.Anything, task.ID, false).Return(nil).Once()

	for i := 0; i < 3; i++ {
		_, err := s.vote(s.voters[i], task, false, 80)
		s.Require().NoError(err)
	}

	status, err := s.vote(s.voters[3], task, true, 80)
	s.Require().NoError(err)
	s.Assert().True(status.Finalized)
	s.Assert().False(status.FinalOutcome)
	s.Assert().Zero(status.PositiveVotes)
	s.Assert().Equal(uint32(3), status.NegativeVotes)

	voted, err := s.auth.HasVoted(task.ID, s.voters[3].Address())
	s.Require().NoError(err)
	s.Assert().True(voted)

	_, err = s.vote(s.voters[3], task, true, 80)
	s.Assert().True(attestation.IsDuplicateVoteError(err))

	responses, err := s.auth.Responses(task.ID)
	s.Require().NoError(err)
	s.Assert().Len(responses, 4)
}

// A failing apply is reported together with the finalized status, keeps the
// task listed as unapplied, and is repaired by RetryApply.
func (s *AuthenticatorSuite) TestDownstreamApplyFailed() {
	s.auth = s.newAuthenticator(Config{ConfidenceThreshold: 75, RequiredQuorum: 1}, s.acl())
	task := s.createTask()
	applyErr := errors.New("minting paused")
	s.applier.On("ApplyResult", mock.Anything, task.ID, true).Return(applyErr).Once()

	status, err := s.vote(s.voters[0], task, true, 80)
	s.Require().True(attestation.IsDownstreamApplyFailedError(err))
	s.Require().ErrorIs(err, applyErr)
	s.Require().NotNil(status)
	s.Assert().True(status.Finalized)

	unapplied, err := s.auth.Unapplied()
	s.Require().NoError(err)
	s.Assert().Equal([]uint64{task.ID}, unapplied)

	s.applier.On("ApplyResult", mock.Anything, task.ID, true).Return(nil).Once()
	s.Require().NoError(s.auth.RetryApply(context.Background(), task.ID))

	unapplied, err = s.auth.Unapplied()
	s.Require().NoError(err)
	s.Assert().Empty(unapplied)

	// applied tasks are not applied again
	s.Require().NoError(s.auth.RetryApply(context.Background(), task.ID))
}

func (s *AuthenticatorSuite) TestRetryApply_NotFinalized() {
	task := s.createTask()
	err := s.auth.RetryApply(context.Background(), task.ID)
	s.Assert().True(attestation.IsNotFoundError(err))

	_, err = s.vote(s.voters[0], task, true, 80)
	s.Require().NoError(err)
	err = s.auth.RetryApply(context.Background(), task.ID)
	s.Assert().True(attestation.IsNotFoundError(err))
}

func (s *AuthenticatorSuite) TestGetStatus() {
	_, err := s.auth.GetStatus(1000)
	s.Assert().True(attestation.IsNotFoundError(err))

	task := s.createTask()
	status, err := s.auth.GetStatus(task.ID)
	s.Require().NoError(err)
	s.Assert().Equal(&attestation.ConsensusStatus{TaskID: task.ID}, status)
}

func (s *AuthenticatorSuite) acl() *access.StaticAccessControl {
	voters := make([]common.Address, 0, len(s.voters))
	for _, voter := range s.voters {
		voters = append(voters, voter.Address())
	}
	return access.NewStaticAccessControl([]common.Address{s.creator}, voters, []common.Address{s.admin})
}
