package handler

import (
	"context"

	"player-wallet-service/internal/adapter/http/dto"
	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"
	"player-wallet-service/pkg/apperror"
	"player-wallet-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// CreateWallet handles POST /api/v1/wallets.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		response.Error(c, apperror.Validation("player_id must be a UUID"))
		return
	}

	wallet, err := h.walletSvc.CreateWallet(c.Request.Context(), playerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.WalletResponse{
		WalletID:  wallet.ID,
		PlayerID:  wallet.PlayerID.String(),
		Balance:   wallet.Balance.String(),
		CreatedAt: wallet.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Credit handles POST /api/v1/wallets/:player_id/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	h.mutate(c, h.walletSvc.Credit)
}

// Debit handles POST /api/v1/wallets/:player_id/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	h.mutate(c, h.walletSvc.Debit)
}

// mutate is the shared credit/debit pipeline. A replayed idempotency key is
// success-equivalent: the caller's intent already took effect, so it gets a
// 200 with an already_applied status instead of an error.
func (h *WalletHandler) mutate(c *gin.Context, apply func(context.Context, ports.MutationRequest) (*domain.Transaction, error)) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	var req dto.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := apply(c.Request.Context(), ports.MutationRequest{
		PlayerID:       playerID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		if apperror.HasCode(err, apperror.CodeDuplicateRequest) {
			response.OK(c, dto.TransactionResponse{
				PlayerID:       playerID.String(),
				IdempotencyKey: req.IdempotencyKey,
				Status:         "already_applied",
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(playerID, txn))
}

// GetBalance handles GET /api/v1/wallets/:player_id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), playerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		PlayerID: playerID.String(),
		Balance:  balance.String(),
	})
}

// ListTransactions handles GET /api/v1/wallets/:player_id/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	playerID, ok := playerIDParam(c)
	if !ok {
		return
	}

	txns, err := h.walletSvc.ListTransactions(c.Request.Context(), playerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(playerID, &txns[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Items: items,
		Total: len(items),
	})
}

// playerIDParam parses the :player_id path segment, responding with a
// validation error on malformed input.
func playerIDParam(c *gin.Context) (uuid.UUID, bool) {
	playerID, err := uuid.Parse(c.Param("player_id"))
	if err != nil {
		response.Error(c, apperror.Validation("player_id must be a UUID"))
		return uuid.Nil, false
	}
	return playerID, true
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(playerID uuid.UUID, txn *domain.Transaction) dto.TransactionResponse {
	direction := "debit"
	if txn.IsCredit() {
		direction = "credit"
	}
	return dto.TransactionResponse{
		TransactionID:  txn.ID,
		PlayerID:       playerID.String(),
		Amount:         txn.Amount.Abs().String(),
		Direction:      direction,
		IdempotencyKey: txn.IdempotencyKey,
		Status:         "applied",
		CreatedAt:      txn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
