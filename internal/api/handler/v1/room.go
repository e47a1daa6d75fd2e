package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zbd0329/money-distributor/internal/api/handler/v1/request"
	"github.com/zbd0329/money-distributor/internal/api/handler/v1/response"
	"github.com/zbd0329/money-distributor/internal/service"
)

type RoomService interface {
	CreateRoom(ctx context.Context, name string, creatorID uint) (string, error)
	JoinRoom(ctx context.Context, roomID string, userID uint) error
}

type RoomHandler struct {
	svc RoomService
}

func NewRoomHandler(svc RoomService) *RoomHandler {
	return &RoomHandler{
		svc: svc,
	}
}

// HandleCreateRoom godoc
// @Summary      Create a chat room
// @Description  Creates a chat room with the caller as its first member
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        X-USER-ID  header    int                        true  "Caller's user ID"
// @Param        input      body      request.CreateRoomRequest  true  "Room details"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /rooms [post]
func (h *RoomHandler) HandleCreateRoom(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	roomID, err := h.svc.CreateRoom(ctx.Request.Context(), req.RoomName, userID)
	if err != nil {
		err = fmt.Errorf("HandleCreateRoom -> h.svc.CreateRoom -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"room_id": roomID})
}

// HandleJoinRoom godoc
// @Summary      Join a chat room
// @Description  Adds the caller as a member of the room
// @Tags         rooms
// @Produce      json
// @Param        X-USER-ID  header    int     true  "Caller's user ID"
// @Param        roomID     path      string  true  "Room ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /rooms/{roomID}/join [post]
func (h *RoomHandler) HandleJoinRoom(ctx *gin.Context) {
	userID, respErr := callerID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	roomID := ctx.Param("roomID")

	if err := h.svc.JoinRoom(ctx.Request.Context(), roomID, userID); err != nil {
		if errors.Is(err, service.ErrMemberExists) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleJoinRoom -> h.svc.JoinRoom -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "joined room successfully"})
}
