package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zbd0329/money-distributor/internal/api/handler/v1/request"
	"github.com/zbd0329/money-distributor/internal/api/handler/v1/response"
	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/service"
)

type WalletService interface {
	CreateWallet(ctx context.Context, userID uint) (domain.Wallet, error)
	Charge(ctx context.Context, userID uint, amount int64) (domain.Wallet, error)
	GetWallet(ctx context.Context, userID uint) (domain.Wallet, error)
	ListTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

type WalletHandler struct {
	svc WalletService
}

func NewWalletHandler(svc WalletService) *WalletHandler {
	return &WalletHandler{
		svc: svc,
	}
}

// HandleCreateWallet godoc
// @Summary      Create a wallet
// @Description  Creates a zero-balance wallet for the caller
// @Tags         wallets
// @Produce      json
// @Param        X-USER-ID  header    int  true  "Caller's user ID"
// @Success      201  {object}  response.WalletResponse
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /wallet [post]
func (h *WalletHandler) HandleCreateWallet(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	wallet, err := h.svc.CreateWallet(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrWalletExists) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleCreateWallet -> h.svc.CreateWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewWalletResponse(wallet))
}

// HandleCharge godoc
// @Summary      Charge a wallet
// @Description  Tops up the caller's wallet and records a CHARGE entry in the transaction history
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        X-USER-ID  header    int                    true  "Caller's user ID"
// @Param        input      body      request.ChargeRequest  true  "Amount to add"
// @Success      200  {object}  response.WalletResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /wallet/charge [post]
func (h *WalletHandler) HandleCharge(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ChargeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	wallet, err := h.svc.Charge(ctx.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("wallet", "userID", userID))
			return
		}

		err = fmt.Errorf("HandleCharge -> h.svc.Charge -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewWalletResponse(wallet))
}

// HandleGetWallet godoc
// @Summary      Get wallet and history
// @Description  Returns the caller's balance and full transaction history, oldest first
// @Tags         wallets
// @Produce      json
// @Param        X-USER-ID  header    int  true  "Caller's user ID"
// @Success      200  {object}  response.WalletDetailResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /wallet [get]
func (h *WalletHandler) HandleGetWallet(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	wallet, err := h.svc.GetWallet(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("wallet", "userID", userID))
			return
		}

		err = fmt.Errorf("HandleGetWallet -> h.svc.GetWallet -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	history, err := h.svc.ListTransactions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("HandleGetWallet -> h.svc.ListTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.WalletDetailResponse{
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
		History: history,
	})
}
