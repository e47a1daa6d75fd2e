package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errServerError = errors.New("something went wrong, please try again later")

type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error"`
}

func (e *Err) Error() string {
	return e.Msg
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		StatusCode: statusCode,
		Msg:        err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return NewErr(http.StatusNotFound, fmt.Errorf("%v not found by %v (%v)", resource, key, value))
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

// ErrInternalServerError logs the real error and hands the caller a generic
// message, so infrastructure detail never leaks through the API.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("server error", zap.Error(err))

	return NewErr(http.StatusInternalServerError, errServerError)
}

func ErrServiceUnavailable(err error) *Err {
	zap.L().Error("dependency unavailable", zap.Error(err))

	return NewErr(http.StatusServiceUnavailable, err)
}

func ErrGatewayTimeout(err error) *Err {
	return NewErr(http.StatusGatewayTimeout, err)
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.StatusCode, err)
}
