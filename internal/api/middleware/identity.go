package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContextKeyUserID is where RequireUserID stores the caller's identity.
const ContextKeyUserID = "user_id"

// HeaderUserID carries the caller's identity. Identity is asserted by an
// upstream gateway, so the value is trusted as-is.
const HeaderUserID = "X-USER-ID"

// HeaderRoomID carries the chat room the caller is acting in.
const HeaderRoomID = "X-ROOM-ID"

var (
	errMissingUserID = errors.New("X-USER-ID header is required")
	errInvalidUserID = errors.New("X-USER-ID header must be a positive integer")
)

// RequireUserID rejects requests without a well-formed X-USER-ID header
// and stores the parsed ID for the handlers downstream.
func RequireUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := ctx.GetHeader(HeaderUserID)
		if raw == "" {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errMissingUserID.Error()})

			return
		}

		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || userID == 0 {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errInvalidUserID.Error()})

			return
		}

		ctx.Set(ContextKeyUserID, uint(userID))
		ctx.Next()
	}
}

// UserIDFromContext retrieves the identity stored by RequireUserID.
func UserIDFromContext(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}

	userID, ok := value.(uint)

	return userID, ok
}
