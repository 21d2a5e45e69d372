package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/SscSPs/costshare_ledger/internal/handlers"
	"github.com/SscSPs/costshare_ledger/internal/platform/config"
	"github.com/SscSPs/costshare_ledger/internal/platform/validation"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type HandlersTestSuite struct {
	suite.Suite
	router       *gin.Engine
	jwtSecret    string
	pinger       *stubPinger
	ledger       *MockLedgerService
	activity     *MockActivityService
	registration *MockRegistrationService
	bill         *MockBillService
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(validation.Register())
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.ledger = new(MockLedgerService)
	suite.activity = new(MockActivityService)
	suite.registration = new(MockRegistrationService)
	suite.bill = new(MockBillService)
	suite.pinger = &stubPinger{}

	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}
	services := &portssvc.ServiceContainer{
		Ledger:       suite.ledger,
		Activity:     suite.activity,
		Registration: suite.registration,
		Bill:         suite.bill,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, services, handlers.RouteDeps{
		Pinger: suite.pinger,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("costshare_ledger_transactions_total 1\n"))
		}),
	})
}

func (suite *HandlersTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err)
	return signed
}

func (suite *HandlersTestSuite) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) errorBody(w *httptest.ResponseRecorder) string {
	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// --- Infrastructure routes ---

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())

	suite.pinger.err = errors.New("connection refused")
	w = suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlersTestSuite) TestMetricsIsPublic() {
	w := suite.do(http.MethodGet, "/metrics", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "transactions_total")
}

func (suite *HandlersTestSuite) TestMissingToken() {
	w := suite.do(http.MethodGet, "/api/v1/accounts/me", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.ledger.AssertNotCalled(suite.T(), "GetAccount", mock.Anything, mock.Anything)
}

// --- Ledger ---

func (suite *HandlersTestSuite) TestRecharge_Success() {
	suite.ledger.On("ApplyTransaction", mock.Anything, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.UserID == "u1" &&
			e.ActorID == "u1" &&
			e.Type == domain.TransactionRecharge &&
			e.Amount.Equal(decimal.RequireFromString("25.50")) &&
			e.Description == "Balance recharge"
	})).Return(&domain.LedgerResult{TransactionID: "tx-1", NewBalance: decimal.RequireFromString("125.50")}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/recharge", "u1", map[string]any{"amount": "25.50"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RechargeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("tx-1", resp.TransactionID)
	suite.True(decimal.RequireFromString("125.50").Equal(resp.NewBalance))
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestRecharge_RejectsBadAmounts() {
	for _, amount := range []string{"0", "-5", "1.005"} {
		w := suite.do(http.MethodPost, "/api/v1/accounts/recharge", "u1", map[string]any{"amount": amount})
		suite.Equal(http.StatusBadRequest, w.Code, "amount %s", amount)
	}
	suite.ledger.AssertNotCalled(suite.T(), "ApplyTransaction", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestGetMyAccount() {
	suite.ledger.On("GetAccount", mock.Anything, "u1").
		Return(&domain.Account{UserID: "u1", Balance: decimal.Zero}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/me", "u1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("u1", resp.UserID)
	suite.True(resp.Balance.IsZero())
}

// --- Registrations ---

func (suite *HandlersTestSuite) TestRegister_WithoutBody() {
	suite.registration.On("Register", mock.Anything, "act-1", "u1", domain.RegistrationDetails{}).
		Return(&domain.Registration{RegistrationID: "r1", ActivityID: "act-1", UserID: "u1", Status: domain.RegistrationApproved}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/activities/act-1/registrations", "u1", nil)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RegistrationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("r1", resp.RegistrationID)
	suite.Equal(domain.RegistrationApproved, resp.Status)
}

func (suite *HandlersTestSuite) TestRegister_ErrorMapping() {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: max 10", apperrors.ErrActivityFull), http.StatusConflict},
		{apperrors.ErrAlreadyRegistered, http.StatusConflict},
		{apperrors.ErrActivityNotAcceptingRegistrations, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: activity act-1", apperrors.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		suite.registration.On("Register", mock.Anything, "act-1", "u1", mock.Anything).Return(nil, tt.err).Once()
		w := suite.do(http.MethodPost, "/api/v1/activities/act-1/registrations", "u1", nil)
		suite.Equal(tt.want, w.Code, tt.err.Error())
		suite.Equal(tt.err.Error(), suite.errorBody(w))
	}
}

func (suite *HandlersTestSuite) TestListRegistrations_InvalidStatus() {
	w := suite.do(http.MethodGet, "/api/v1/activities/act-1/registrations?status=paid", "org", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.registration.AssertNotCalled(suite.T(), "ListByActivity", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestListRegistrations_StatusFilter() {
	suite.registration.On("ListByActivity", mock.Anything, "act-1", mock.MatchedBy(func(s *domain.RegistrationStatus) bool {
		return s != nil && *s == domain.RegistrationPending
	})).Return([]domain.Registration{{RegistrationID: "r1"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/activities/act-1/registrations?status=pending", "org", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.registration.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestCancel_WithRefund() {
	txID := "tx-9"
	suite.registration.On("Cancel", mock.Anything, "r1", "u1", domain.CancelOptions{Refund: true}).
		Return(&domain.CancelResult{
			Registration:  domain.Registration{RegistrationID: "r1", Status: domain.RegistrationCancelled},
			RefundAmount:  decimal.RequireFromString("33.34"),
			TransactionID: &txID,
		}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/registrations/r1/cancel", "u1", map[string]any{"refund": true})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CancelRegistrationResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.RegistrationCancelled, resp.Registration.Status)
	suite.Require().NotNil(resp.TransactionID)
	suite.Equal("tx-9", *resp.TransactionID)
}

func (suite *HandlersTestSuite) TestPay_InsufficientFunds() {
	suite.registration.On("Pay", mock.Anything, "r1", "u1").
		Return(nil, fmt.Errorf("%w: balance 10.00, required 33.34", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/registrations/r1/pay", "u1", nil)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Contains(suite.errorBody(w), "insufficient")
}

func (suite *HandlersTestSuite) TestSetRatio_RejectsNonPositive() {
	w := suite.do(http.MethodPut, "/api/v1/registrations/r1/ratio", "org", map[string]any{"ratio": "0"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.registration.AssertNotCalled(suite.T(), "SetCostSharingRatio", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Activities ---

func (suite *HandlersTestSuite) TestGetCostSharing() {
	regID, userID := "r1", "u1"
	suite.activity.On("GetCostSharing", mock.Anything, "act-1").Return(
		&domain.Activity{ActivityID: "act-1", Title: "Team lunch"},
		[]domain.CostSharingRecord{
			{RecordID: "c0", CostType: domain.CostTypeOrganizer, Amount: decimal.RequireFromString("20")},
			{RecordID: "c1", RegistrationID: &regID, UserID: &userID, CostType: domain.CostTypeParticipant, Amount: decimal.RequireFromString("80")},
		},
		nil,
	).Once()

	w := suite.do(http.MethodGet, "/api/v1/activities/act-1/cost-sharing", "u1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ActivityCostSharingResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("act-1", resp.Activity.ActivityID)
	suite.Len(resp.CostSharingRecords, 2)
}

func (suite *HandlersTestSuite) TestRecalculate_Forbidden() {
	suite.registration.On("Recalculate", mock.Anything, "act-1", "u1").Return(nil, apperrors.ErrForbidden).Once()

	w := suite.do(http.MethodPost, "/api/v1/activities/act-1/cost-sharing/recalculate", "u1", nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

// --- Bills ---

func (suite *HandlersTestSuite) TestCreateDraft_PassesOverrides() {
	suite.bill.On("CreateOrUpdateDraft", mock.Anything, "act-1", "org", mock.MatchedBy(func(o domain.BillOverrides) bool {
		return o.CustomTotalCost != nil &&
			o.CustomTotalCost.Equal(decimal.RequireFromString("90")) &&
			o.Ratios["u2"].Equal(decimal.RequireFromString("2"))
	})).Return(&domain.Bill{BillID: "bill-1", Status: domain.BillDraft}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/activities/act-1/bills/draft", "org", map[string]any{
		"customTotalCost": "90",
		"ratios":          map[string]string{"u2": "2"},
	})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BillResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("bill-1", resp.BillID)
	suite.NotNil(resp.BillDetails)
}

func (suite *HandlersTestSuite) TestPushBill_ReportsFailedDeliveries() {
	now := time.Now().UTC()
	suite.bill.On("PushBill", mock.Anything, "bill-1", "org").Return(
		&domain.Bill{BillID: "bill-1", Status: domain.BillPushed, PushedAt: &now},
		[]domain.DispatchResult{
			{NoticeID: "n1", UserID: "u1", Status: domain.DeliveryDelivered},
			{NoticeID: "n2", UserID: "u2", Status: domain.DeliveryFailed, Error: "inbox unavailable"},
		},
		nil,
	).Once()

	w := suite.do(http.MethodPost, "/api/v1/bills/bill-1/push", "org", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PushBillResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.BillPushed, resp.Bill.Status)
	suite.Equal(1, resp.FailedCount)
	suite.Len(resp.DispatchResults, 2)
}

func (suite *HandlersTestSuite) TestPushBill_AlreadyPushed() {
	suite.bill.On("PushBill", mock.Anything, "bill-1", "org").Return(nil, nil, apperrors.ErrAlreadyPushed).Once()

	w := suite.do(http.MethodPost, "/api/v1/bills/bill-1/push", "org", nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestGetBill_HidesInternalErrors() {
	suite.bill.On("GetBill", mock.Anything, "bill-1").
		Return(nil, fmt.Errorf("%w: details sum 99.99", apperrors.ErrReconciliationMismatch)).Once()

	w := suite.do(http.MethodGet, "/api/v1/bills/bill-1", "org", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to retrieve bill", suite.errorBody(w))
}

func (suite *HandlersTestSuite) TestListMyMessages_DefaultLimit() {
	suite.bill.On("ListUserMessages", mock.Anything, "u1", 50).Return([]domain.Message{{MessageID: "m1"}}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/messages/me", "u1", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.bill.AssertExpectations(suite.T())
}

func (suite *HandlersTestSuite) TestMarkNoticePaid() {
	req := dto.MarkNoticePaidRequest{PaymentMethod: "cash"}
	suite.bill.On("MarkNoticePaid", mock.Anything, "n1", "org", req).
		Return(&domain.BillNotice{NoticeID: "n1", PaymentStatus: domain.PaymentPaid, PaymentMethod: "cash"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/notices/n1/mark-paid", "org", req)

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.BillNotice
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.PaymentPaid, resp.PaymentStatus)
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
