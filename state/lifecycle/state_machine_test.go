package lifecycle

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
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/access"
	"github.com/onflow/flow-attestation/module/metrics"
	mockmodule "github.com/onflow/flow-attestation/module/mock"
	"github.com/onflow/flow-attestation/module/ratelimit"
	"github.com/onflow/flow-attestation/module/registry"
	bstorage "github.com/onflow/flow-attestation/storage/badger"
	"github.com/onflow/flow-attestation/utils/unittest"
)

func TestStateMachine(t *testing.T) {
	suite.Run(t, new(StateMachineSuite))
}

type StateMachineSuite struct {
	suite.Suite

	dir      string
	db       *badger.DB
	identity common.Address
	owner    common.Address
	acl      *access.StaticAccessControl
	issuer   *mockmodule.ArtifactIssuer
	machine  *StateMachine
}

func (s *StateMachineSuite) SetupTest() {
	s.dir = unittest.TempDir(s.T())
	s.db = unittest.BadgerDB(s.T(), s.dir)
	s.identity = unittest.AddressFixture()
	s.owner = unittest.AddressFixture()

	log := unittest.Logger()
	collector := metrics.NewNoopCollector()
	s.acl = access.NewStaticAccessControl([]common.Address{s.identity}, nil, nil)
	reg := registry.New(log, s.db, bstorage.NewTasks(collector, s.db), ratelimit.NewLimiter(log, s.db),
		ratelimit.NewManualPeriods(1), s.acl, collector, notifications.NewNoopConsumer(), 100)
	s.issuer = mockmodule.NewArtifactIssuer(s.T())

	s.machine = New(log, s.db, bstorage.NewItems(s.db), reg, s.issuer, collector, notifications.NewNoopConsumer(), s.identity)
}

func (s *StateMachineSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
	s.Require().NoError(os.RemoveAll(s.dir))
}

func (s *StateMachineSuite) register() *attestation.Item {
	item, err := s.machine.RegisterItem(s.owner, unittest.DigestFixture(), unittest.DigestFixture(), 4, "ipfs://item")
	s.Require().NoError(err)
	return item
}

func (s *StateMachineSuite) request(itemID uint64) uint64 {
	taskID, err := s.machine.RequestAuthentication(context.Background(), itemID, s.owner)
	s.Require().NoError(err)
	return taskID
}

func (s *StateMachineSuite) TestRegisterItem() {
	first := s.register()
	second := s.register()
	s.Assert().Equal(uint64(1), first.ID)
	s.Assert().Equal(uint64(2), second.ID)
	s.Assert().Equal(attestation.StatusPending, first.Status)
	s.Assert().Zero(first.TaskID)

	stored, err := s.machine.Item(first.ID)
	s.Require().NoError(err)
	s.Assert().Equal(first, stored)

	_, err = s.machine.RegisterItem(s.owner, attestation.ZeroDigest, unittest.DigestFixture(), 1, "")
	s.Assert().True(attestation.IsInvalidInputError(err))
	_, err = s.machine.RegisterItem(common.Address{}, unittest.DigestFixture(), unittest.DigestFixture(), 1, "")
	s.Assert().True(attestation.IsInvalidInputError(err))
}

func (s *StateMachineSuite) TestRequestAuthentication() {
	item := s.register()

	taskID := s.request(item.ID)
	s.Assert().Equal(uint64(1), taskID)

	stored, err := s.machine.Item(item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(taskID, stored.TaskID)
	s.Assert().Equal(attestation.StatusPending, stored.Status)

	byTask, err := s.machine.ItemByTask(taskID)
	s.Require().NoError(err)
	s.Assert().Equal(item.ID, byTask.ID)
}

func (s *StateMachineSuite) TestRequestAuthentication_Errors() {
	_, err := s.machine.RequestAuthentication(context.Background(), 99, s.owner)
	s.Assert().True(attestation.IsNotFoundError(err))

	item := s.register()
	_, err = s.machine.RequestAuthentication(context.Background(), item.ID, unittest.AddressFixture())
	s.Assert().True(attestation.IsNotAuthorizedError(err))

	taskID := s.request(item.ID)
	s.issuer.On("IssueArtifact", mock.Anything, s.owner, "ipfs://item").Return(uint64(5), nil).Once()
	_, err = s.machine.Apply(context.Background(), taskID, true)
	s.Require().NoError(err)

	_, err = s.machine.RequestAuthentication(context.Background(), item.ID, s.owner)
	s.Assert().True(attestation.IsInvalidStateError(err))
}

// A failed task creation leaves the item untouched.
func (s *StateMachineSuite) TestRequestAuthentication_TaskCreationFails() {
	item := s.register()
	s.Require().NoError(s.acl.Revoke(module.CapabilityTaskCreator, s.identity))

	_, err := s.machine.RequestAuthentication(context.Background(), item.ID, s.owner)
	s.Assert().True(attestation.IsNotAuthorizedError(err))

	stored, err := s.machine.Item(item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(item, stored)
}

// Applying the same positive result twice issues the artifact exactly once
// and returns the recorded artifact id on the second call.
func (s *StateMachineSuite) TestScenarioApplyTwice() {
	item := s.register()
	taskID := s.request(item.ID)
	s.issuer.On("IssueArtifact", mock.Anything, s.owner, "ipfs://item").Return(uint64(42), nil).Once()

	applied, err := s.machine.Apply(context.Background(), taskID, true)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusAuthenticated, applied.Status)
	s.Assert().Equal(uint64(42), applied.ArtifactID)

	again, err := s.machine.Apply(context.Background(), taskID, true)
	s.Require().NoError(err)
	s.Assert().Equal(uint64(42), again.ArtifactID)

	s.issuer.AssertNumberOfCalls(s.T(), "IssueArtifact", 1)
}

func (s *StateMachineSuite) TestApply_Rejected() {
	item := s.register()
	taskID := s.request(item.ID)

	applied, err := s.machine.Apply(context.Background(), taskID, false)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusRejected, applied.Status)
	s.Assert().False(applied.Linked())

	// rejected items may retry with a new task
	retryID := s.request(item.ID)
	s.Assert().NotEqual(taskID, retryID)
	stored, err := s.machine.Item(item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusPending, stored.Status)
	s.Assert().Equal(retryID, stored.TaskID)
}

// Results of a task that was replaced by a newer one are ignored.
func (s *StateMachineSuite) TestApply_SupersededTask() {
	item := s.register()
	first := s.request(item.ID)
	second := s.request(item.ID)

	applied, err := s.machine.Apply(context.Background(), first, true)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusPending, applied.Status)
	s.Assert().Equal(second, applied.TaskID)
}

func (s *StateMachineSuite) TestApply_UnmappedTask() {
	_, err := s.machine.Apply(context.Background(), 77, true)
	s.Assert().True(attestation.IsUnmappedTaskError(err))

	_, err = s.machine.ItemByTask(77)
	s.Assert().True(attestation.IsUnmappedTaskError(err))
}

// A failing issuer leaves the item authenticated but unlinked until a
// retry succeeds.
func (s *StateMachineSuite) TestApply_IssuanceFailed() {
	item := s.register()
	taskID := s.request(item.ID)
	s.issuer.On("IssueArtifact", mock.Anything, s.owner, "ipfs://item").Return(uint64(0), errors.New("unavailable")).Once()

	applied, err := s.machine.Apply(context.Background(), taskID, true)
	s.Require().True(attestation.IsIssuanceFailedError(err))
	s.Assert().Equal(attestation.StatusAuthenticated, applied.Status)

	stored, err := s.machine.Item(item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusAuthenticated, stored.Status)
	s.Assert().False(stored.Linked())

	unlinked, err := s.machine.Unlinked()
	s.Require().NoError(err)
	s.Assert().Equal([]uint64{item.ID}, unlinked)

	s.issuer.On("IssueArtifact", mock.Anything, s.owner, "ipfs://item").Return(uint64(8), nil).Once()
	repaired, err := s.machine.RetryIssuance(context.Background(), item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(uint64(8), repaired.ArtifactID)

	unlinked, err = s.machine.Unlinked()
	s.Require().NoError(err)
	s.Assert().Empty(unlinked)

	// linked items are not issued again
	again, err := s.machine.RetryIssuance(context.Background(), item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(uint64(8), again.ArtifactID)
}

func (s *StateMachineSuite) TestRetryIssuance_NotAuthenticated() {
	item := s.register()
	_, err := s.machine.RetryIssuance(context.Background(), item.ID)
	s.Assert().True(attestation.IsInvalidStateError(err))

	_, err = s.machine.RetryIssuance(context.Background(), 1234)
	s.Assert().True(attestation.IsNotFoundError(err))
}

func (s *StateMachineSuite) TestApplyResult() {
	item := s.register()
	taskID := s.request(item.ID)

	s.Require().NoError(s.machine.ApplyResult(context.Background(), taskID, false))
	stored, err := s.machine.Item(item.ID)
	s.Require().NoError(err)
	s.Assert().Equal(attestation.StatusRejected, stored.Status)
}
