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

type DistributionService interface {
	CreateSpray(ctx context.Context, creatorID uint, roomID string, totalAmount int64, recipientCount int) (string, error)
	SubmitClaim(ctx context.Context, code string, userID uint, roomID string) (int64, error)
	LookupSpray(ctx context.Context, code string, requesterID uint) (domain.SprayStatus, error)
}

type DistributionHandler struct {
	svc DistributionService
}

func NewDistributionHandler(svc DistributionService) *DistributionHandler {
	return &DistributionHandler{
		svc: svc,
	}
}

// HandleCreateSpray godoc
// @Summary      Spray money into a chat room
// @Description  Splits the given amount into shares for the room and returns the token to claim them with
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        X-USER-ID  header    int                   true  "Caller's user ID"
// @Param        X-ROOM-ID  header    string                true  "Chat room ID"
// @Param        input      body      request.SprayRequest  true  "Amount and recipient count"
// @Success      201  {object}  response.SprayResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /spray [post]
func (h *DistributionHandler) HandleCreateSpray(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	roomID, respErr := callerRoom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SprayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	code, err := h.svc.CreateSpray(ctx.Request.Context(), userID, roomID, req.TotalAmount, req.RecipientCount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotRoomMember):
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not a member of room %v", userID, roomID)))
		case errors.Is(err, service.ErrWalletNotFound):
			response.RenderErr(ctx, response.ErrNotFound("wallet", "userID", userID))
		case errors.Is(err, service.ErrInsufficientBalance):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrInvalidSpray):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrTokenStoreDown):
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
		default:
			err = fmt.Errorf("HandleCreateSpray -> h.svc.CreateSpray -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.SprayResponse{Token: code})
}

// HandleReceive godoc
// @Summary      Claim a share of a sprayed amount
// @Description  Claims one unclaimed share of the distribution identified by the token
// @Tags         distributions
// @Accept       json
// @Produce      json
// @Param        X-USER-ID  header    int                     true  "Caller's user ID"
// @Param        X-ROOM-ID  header    string                  true  "Chat room ID"
// @Param        input      body      request.ReceiveRequest  true  "Distribution token"
// @Success      200  {object}  response.ReceiveResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Failure      504  {object}  response.Err
// @Router       /receive [post]
func (h *DistributionHandler) HandleReceive(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	roomID, respErr := callerRoom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReceiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	amount, err := h.svc.SubmitClaim(ctx.Request.Context(), req.Token, userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotRoomMember):
			response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not a member of room %v", userID, roomID)))
		case errors.Is(err, service.ErrSelfClaim):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrClaimWindowExpired),
			errors.Is(err, service.ErrAlreadyClaimed),
			errors.Is(err, service.ErrNoSharesLeft):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrClaimTimeout):
			response.RenderErr(ctx, response.ErrGatewayTimeout(err))
		case errors.Is(err, service.ErrClaimQueueFull):
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
		default:
			err = fmt.Errorf("HandleReceive -> h.svc.SubmitClaim -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.ReceiveResponse{ReceivedAmount: amount})
}

// HandleGetSprayStatus godoc
// @Summary      Look up a spray's claim status
// @Description  Returns the sprayed amount, the total claimed so far and who claimed what. Creator only, up to 7 days after creation.
// @Tags         distributions
// @Produce      json
// @Param        X-USER-ID  header    int     true  "Caller's user ID"
// @Param        token      path      string  true  "Distribution token"
// @Success      200  {object}  response.SprayStatusResponse
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /spray/{token} [get]
func (h *DistributionHandler) HandleGetSprayStatus(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	code := ctx.Param("token")

	status, err := h.svc.LookupSpray(ctx.Request.Context(), code, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrNotCreator):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleGetSprayStatus -> h.svc.LookupSpray -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.NewSprayStatusResponse(status))
}
