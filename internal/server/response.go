package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tartampluch/go-lunar/internal/config"
)

// Response is the envelope of every API reply.
type Response struct {
	Code int    `json:"code"` // APICodeSuccess or APICodeFailure
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code: config.APICodeSuccess,
		Msg:  config.APIMsgSuccess,
		Data: data,
	})
}

func fail(c *gin.Context, status int, err error) {
	slog.Debug(config.MsgAPIRequest,
		config.LogKeyComponent, config.CompAPI,
		config.LogKeyRoute, c.FullPath(),
		config.LogKeyError, err,
	)
	c.AbortWithStatusJSON(status, Response{
		Code: config.APICodeFailure,
		Msg:  err.Error(),
	})
}
