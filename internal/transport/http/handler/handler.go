// Package handler exposes the reconciliation services over gin. Every
// response uses the code/msg/data envelope; business failures map onto the
// envelope code rather than the transport status.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopsync/internal/domain"
	"shopsync/internal/remote"
	resp "shopsync/internal/transport/http/response"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, resp.OK(data))
}

// fail translates service errors into envelope codes. Remote rejections keep
// their upstream message so the caller sees the same complaint either way.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, err.Error()))
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusOK, resp.Error(resp.CodeConflict, err.Error()))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, err.Error()))
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
	case remote.IsRejection(err):
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, "internal error"))
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, msg))
}

// currentUserID reads the subject set by the JWT middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("userId")
}
