package v1

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/zbd0329/money-distributor/internal/api/handler/v1/response"
	"github.com/zbd0329/money-distributor/internal/api/middleware"
)

var (
	errMissingIdentity = errors.New("caller identity is missing from the request context")
	errMissingRoomID   = errors.New("X-ROOM-ID header is required")
)

// callerID retrieves the identity parsed by middleware.RequireUserID.
func callerID(ctx *gin.Context) (uint, *response.Err) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, response.ErrInternalServerError(errMissingIdentity)
	}

	return userID, nil
}

// callerRoom reads the chat room the caller is acting in.
func callerRoom(ctx *gin.Context) (string, *response.Err) {
	roomID := ctx.GetHeader(middleware.HeaderRoomID)
	if roomID == "" {
		return "", response.ErrBadRequest(errMissingRoomID)
	}

	return roomID, nil
}
