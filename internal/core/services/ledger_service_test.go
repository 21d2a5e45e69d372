package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	"github.com/SscSPs/costshare_ledger/internal/core/domain"
	"github.com/SscSPs/costshare_ledger/internal/core/services"
	"github.com/SscSPs/costshare_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	txm      *MockTxManager
	mockRepo *MockLedgerRepository
	service  *services.LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.txm = new(MockTxManager)
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.txm, suite.mockRepo, services.WithLedgerClock(fixedClock))
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_Recharge() {
	ctx := context.Background()
	expectTx(suite.txm)
	suite.mockRepo.On("EnsureAccountInTx", ctx, nil, "u1", fixedNow).Return(nil).Once()
	suite.mockRepo.On("FindAccountForUpdate", ctx, nil, "u1").Return(&domain.Account{UserID: "u1", Balance: dec("10.00")}, nil).Once()
	suite.mockRepo.On("UpdateBalanceInTx", ctx, nil, "u1", mock.MatchedBy(func(b decimal.Decimal) bool {
		return b.Equal(dec("110.50"))
	}), "u1", fixedNow).Return(nil).Once()
	suite.mockRepo.On("SaveTransactionInTx", ctx, nil, mock.MatchedBy(func(t domain.Transaction) bool {
		return t.Type == domain.TransactionRecharge && t.BalanceAfter.Equal(dec("110.50")) && t.Status == domain.TransactionCompleted
	})).Return(nil).Once()

	res, err := suite.service.ApplyTransaction(ctx, domain.LedgerEntry{
		UserID: "u1",
		Type:   domain.TransactionRecharge,
		Amount: dec("100.50"),
	})

	suite.Require().NoError(err)
	suite.True(res.NewBalance.Equal(dec("110.50")))
	suite.NotEmpty(res.TransactionID)
	suite.Equal(res.TransactionID, res.Transaction.TransactionID)
	suite.txm.AssertCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_InsufficientFundsLeavesBalance() {
	ctx := context.Background()
	expectTx(suite.txm)
	suite.mockRepo.On("EnsureAccountInTx", ctx, nil, "u1", fixedNow).Return(nil).Once()
	suite.mockRepo.On("FindAccountForUpdate", ctx, nil, "u1").Return(&domain.Account{UserID: "u1", Balance: dec("50.00")}, nil).Once()

	res, err := suite.service.ApplyTransaction(ctx, domain.LedgerEntry{
		UserID: "u1",
		Type:   domain.TransactionExpense,
		Amount: dec("75.00"),
	})

	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.txm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.txm.AssertCalled(suite.T(), "Rollback", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_InvalidAmounts() {
	ctx := context.Background()
	expectTx(suite.txm)
	for _, amount := range []string{"0", "-5", "1.005"} {
		_, err := suite.service.ApplyTransaction(ctx, domain.LedgerEntry{UserID: "u1", Type: domain.TransactionRecharge, Amount: dec(amount)})
		suite.ErrorIs(err, apperrors.ErrValidation, amount)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyTransaction_BeginFails() {
	ctx := context.Background()
	dbErr := errors.New("connection refused")
	suite.txm.On("Begin", ctx).Return(nil, dbErr).Once()

	_, err := suite.service.ApplyTransaction(ctx, domain.LedgerEntry{UserID: "u1", Type: domain.TransactionRecharge, Amount: dec("1")})
	suite.ErrorIs(err, dbErr)
}

func (suite *LedgerServiceTestSuite) TestGetAccount_ZeroViewWhenMissing() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByUserID", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	acc, err := suite.service.GetAccount(ctx, "ghost")
	suite.Require().NoError(err)
	suite.Equal("ghost", acc.UserID)
	suite.True(acc.Balance.IsZero())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_MapsFilter() {
	ctx := context.Background()
	next := "token-2"
	txns := []domain.Transaction{{TransactionID: "t1", Type: domain.TransactionExpense, Amount: dec("5")}}
	suite.mockRepo.On("ListTransactionsByUserID", ctx, "u1", mock.MatchedBy(func(f domain.TransactionFilter) bool {
		return f.Type != nil && *f.Type == domain.TransactionExpense
	}), 10, mock.MatchedBy(func(tok *string) bool { return tok != nil && *tok == "token-1" })).Return(txns, &next, nil).Once()

	resp, err := suite.service.ListTransactions(ctx, "u1", dto.ListTransactionsParams{Limit: 10, Type: "expense", NextToken: "token-1"})
	suite.Require().NoError(err)
	suite.Len(resp.Transactions, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal("token-2", *resp.NextToken)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_RejectsUnknownType() {
	_, err := suite.service.ListTransactions(context.Background(), "u1", dto.ListTransactionsParams{Limit: 10, Type: "gift"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestGetStatistics_DefaultWindow() {
	ctx := context.Background()
	since := fixedNow.AddDate(0, 0, -30)
	stats := &domain.LedgerStatistics{AccountCount: 3, TotalBalance: dec("12.34"), Since: since}
	suite.mockRepo.On("GetStatistics", ctx, since).Return(stats, nil).Once()

	got, err := suite.service.GetStatistics(ctx, 0)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(3), got.AccountCount)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
