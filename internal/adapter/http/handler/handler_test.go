package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"player-wallet-service/internal/adapter/http/dto"
	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"
	"player-wallet-service/internal/core/ports/mocks"
	"player-wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(svc ports.WalletService) *gin.Engine {
	return SetupRouter(RouterDeps{
		WalletSvc: svc,
		Logger:    zerolog.Nop(),
	})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data envelope: %s", w.Body.String())
	return data
}

// --- CreateWallet ---

func TestCreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	mockSvc.EXPECT().CreateWallet(gomock.Any(), playerID).Return(&domain.Wallet{
		ID:        1,
		PlayerID:  playerID,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets",
		jsonBody(t, dto.CreateWalletRequest{PlayerID: playerID.String()}))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, playerID.String(), data["player_id"])
	assert.Equal(t, "0", data["balance"])
}

func TestCreateWallet_InvalidPlayerID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets",
		bytes.NewReader([]byte(`{"player_id":"not-a-uuid"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWallet_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().CreateWallet(gomock.Any(), playerID).Return(nil, apperror.ErrWalletExists())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets",
		jsonBody(t, dto.CreateWalletRequest{PlayerID: playerID.String()}))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeWalletExists)
}

// --- Credit / Debit ---

func TestCredit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	mockSvc.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.MutationRequest) (*domain.Transaction, error) {
			assert.Equal(t, playerID, req.PlayerID)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString("25.50")))
			assert.Equal(t, "bet-1", req.IdempotencyKey)
			return &domain.Transaction{
				ID:             9,
				WalletID:       1,
				IdempotencyKey: req.IdempotencyKey,
				Amount:         req.Amount,
				CreatedAt:      time.Now().UTC(),
			}, nil
		})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/credit",
		bytes.NewReader([]byte(`{"amount":"25.50","idempotency_key":"bet-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "applied", data["status"])
	assert.Equal(t, "credit", data["direction"])
	assert.Equal(t, "25.5", data["amount"])
}

func TestDebit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	mockSvc.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(&domain.Transaction{
		ID:             10,
		WalletID:       1,
		IdempotencyKey: "win-2",
		Amount:         decimal.NewFromInt(-40),
		CreatedAt:      time.Now().UTC(),
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/debit",
		bytes.NewReader([]byte(`{"amount":40,"idempotency_key":"win-2"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "debit", data["direction"])
	assert.Equal(t, "40", data["amount"])
}

func TestCredit_DuplicateReturnsAlreadyApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDuplicateRequest())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/credit",
		bytes.NewReader([]byte(`{"amount":10,"idempotency_key":"bet-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "already_applied", data["status"])
	assert.Equal(t, "bet-1", data["idempotency_key"])
}

func TestDebit_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/debit",
		bytes.NewReader([]byte(`{"amount":1000,"idempotency_key":"big-spend"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInsufficientFunds)
}

func TestCredit_ConcurrencyConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrConcurrencyConflict())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/credit",
		bytes.NewReader([]byte(`{"amount":10,"idempotency_key":"contended"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeConcurrencyConflict)
}

func TestCredit_MissingIdempotencyKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/credit",
		bytes.NewReader([]byte(`{"amount":10}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCredit_UnsafeIdempotencyKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+playerID.String()+"/credit",
		bytes.NewReader([]byte(`{"amount":10,"idempotency_key":"has space"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCredit_InvalidPlayerIDInPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/nope/credit",
		bytes.NewReader([]byte(`{"amount":10,"idempotency_key":"bet-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- GetBalance ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().GetBalance(gomock.Any(), playerID).Return(decimal.RequireFromString("77.25"), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+playerID.String()+"/balance", nil)
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "77.25", data["balance"])
}

func TestGetBalance_WalletNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().GetBalance(gomock.Any(), playerID).Return(decimal.Zero, apperror.ErrWalletNotFound())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+playerID.String()+"/balance", nil)
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeWalletNotFound)
}

func TestGetBalance_InternalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().GetBalance(gomock.Any(), playerID).
		Return(decimal.Zero, apperror.InternalError(errors.New("boom")))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+playerID.String()+"/balance", nil)
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal detail never leaks to the client.
	assert.NotContains(t, w.Body.String(), "boom")
}

// --- ListTransactions ---

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()

	mockSvc.EXPECT().ListTransactions(gomock.Any(), playerID).Return([]domain.Transaction{
		{ID: 1, WalletID: 1, IdempotencyKey: "a", Amount: decimal.NewFromInt(100), CreatedAt: time.Now()},
		{ID: 2, WalletID: 1, IdempotencyKey: "b", Amount: decimal.NewFromInt(-30), CreatedAt: time.Now()},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+playerID.String()+"/transactions", nil)
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(2), data["total"])
	items := data["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "credit", first["direction"])
	second := items[1].(map[string]interface{})
	assert.Equal(t, "debit", second["direction"])
	assert.Equal(t, "30", second["amount"])
}

func TestListTransactions_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWalletService(ctrl)
	playerID := uuid.New()
	mockSvc.EXPECT().ListTransactions(gomock.Any(), playerID).Return([]domain.Transaction{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/"+playerID.String()+"/transactions", nil)
	testRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(0), data["total"])
}

// --- Health ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(_ context.Context) error { return s.err }
func (s stubChecker) Name() string                 { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	r := SetupRouter(RouterDeps{
		WalletSvc:      nil,
		HealthCheckers: []ports.HealthChecker{stubChecker{name: "postgres"}, stubChecker{name: "redis"}},
		Logger:         zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	r := SetupRouter(RouterDeps{
		WalletSvc:      nil,
		HealthCheckers: []ports.HealthChecker{stubChecker{name: "postgres", err: errors.New("down")}},
		Logger:         zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
