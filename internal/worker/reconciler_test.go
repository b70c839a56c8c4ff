package worker

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tkaraca/vpos-gateway/internal/domain"
	"github.com/tkaraca/vpos-gateway/internal/gateway"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres"
	"github.com/tkaraca/vpos-gateway/internal/storage/postgres/testhelpers"
)

// statusStub answers Status with a fixed outcome; every other operation is
// unsupported, like a 3-D only bank.
type statusStub struct {
	statusResponse *domain.GatewayResponse
	statusErr      error
	statusCalls    int
}

func (s *statusStub) Name() string { return "stub" }

func (s *statusStub) Pay(ctx context.Context, account *domain.Account, order *domain.Order, card *domain.Card) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxPay)
}

func (s *statusStub) PostAuth(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxPostAuth)
}

func (s *statusStub) Cancel(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxCancel)
}

func (s *statusStub) Refund(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxRefund)
}

func (s *statusStub) Status(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	s.statusCalls++
	return s.statusResponse, s.statusErr
}

func (s *statusStub) History(ctx context.Context, account *domain.Account, order *domain.Order) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxHistory)
}

func (s *statusStub) ThreeDForm(ctx context.Context, account *domain.Account, order *domain.Order, tx domain.TransactionType, card *domain.Card) (*gateway.FormSubmission, error) {
	return nil, domain.NewUnsupportedOperationError("stub", tx)
}

func (s *statusStub) Complete3D(ctx context.Context, account *domain.Account, order *domain.Order, callback url.Values) (*domain.GatewayResponse, error) {
	return nil, domain.NewUnsupportedOperationError("stub", domain.TxPay)
}

type ReconcilerTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	repo   *postgres.SessionRepository
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (suite *ReconcilerTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.repo = postgres.NewSessionRepository(suite.testDB.DB)
}

func (suite *ReconcilerTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *ReconcilerTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *ReconcilerTestSuite) newReconciler(stub *statusStub) *Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReconciler(
		suite.repo,
		map[string]gateway.Gateway{"stub": stub},
		map[string]*domain.Account{"stub": {ClientID: "shop"}},
		time.Minute,
		10,
		30*time.Minute,
		logger,
	)
}

func (suite *ReconcilerTestSuite) seedStaleSession() *postgres.PaymentSession {
	session := testhelpers.PendingSession("stub")
	session.CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	suite.Require().NoError(suite.repo.Create(context.Background(), session))
	return session
}

func (suite *ReconcilerTestSuite) TestAuthorizedAtBank() {
	stub := &statusStub{
		statusResponse: &domain.GatewayResponse{
			Status:         domain.StatusApproved,
			ProcReturnCode: domain.String("00"),
			AuthCode:       domain.String("521354"),
		},
	}
	session := suite.seedStaleSession()

	err := suite.newReconciler(stub).processStaleSessions(context.Background())
	suite.Require().NoError(err)

	found, err := suite.repo.FindByOrderID(context.Background(), session.OrderID)
	suite.Require().NoError(err)
	suite.Equal(postgres.SessionAuthorized, found.Status)
	suite.Require().NotNil(found.AuthCode)
	suite.Equal("521354", *found.AuthCode)
	suite.Equal(1, stub.statusCalls)
}

func (suite *ReconcilerTestSuite) TestDeclinedAtBank() {
	stub := &statusStub{
		statusResponse: &domain.GatewayResponse{
			Status:         domain.StatusDeclined,
			ProcReturnCode: domain.String("99"),
		},
	}
	session := suite.seedStaleSession()

	err := suite.newReconciler(stub).processStaleSessions(context.Background())
	suite.Require().NoError(err)

	found, err := suite.repo.FindByOrderID(context.Background(), session.OrderID)
	suite.Require().NoError(err)
	suite.Equal(postgres.SessionRejected, found.Status)
}

func (suite *ReconcilerTestSuite) TestStatusUnsupportedExpires() {
	stub := &statusStub{
		statusErr: domain.NewUnsupportedOperationError("stub", domain.TxStatus),
	}
	session := suite.seedStaleSession()

	err := suite.newReconciler(stub).processStaleSessions(context.Background())
	suite.Require().NoError(err)

	found, err := suite.repo.FindByOrderID(context.Background(), session.OrderID)
	suite.Require().NoError(err)
	suite.Equal(postgres.SessionExpired, found.Status)
}

func (suite *ReconcilerTestSuite) TestFreshSessionsUntouched() {
	stub := &statusStub{
		statusResponse: &domain.GatewayResponse{Status: domain.StatusApproved},
	}
	fresh := testhelpers.PendingSession("stub")
	suite.Require().NoError(suite.repo.Create(context.Background(), fresh))

	err := suite.newReconciler(stub).processStaleSessions(context.Background())
	suite.Require().NoError(err)

	found, err := suite.repo.FindByOrderID(context.Background(), fresh.OrderID)
	suite.Require().NoError(err)
	suite.Equal(postgres.SessionPending, found.Status)
	suite.Equal(0, stub.statusCalls)
}

func (suite *ReconcilerTestSuite) TestTransportErrorLeavesSessionPending() {
	stub := &statusStub{
		statusErr: domain.NewTransportError(context.DeadlineExceeded),
	}
	session := suite.seedStaleSession()

	err := suite.newReconciler(stub).processStaleSessions(context.Background())
	suite.Require().NoError(err)

	// the next sweep retries; a flaky bank must not expire the session
	found, err := suite.repo.FindByOrderID(context.Background(), session.OrderID)
	suite.Require().NoError(err)
	suite.Equal(postgres.SessionPending, found.Status)
}
