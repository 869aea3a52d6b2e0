package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/server/response"
	"github.com/veesr/escrow/src/utils/logger"

	"github.com/gin-gonic/gin"
)

// StatusOf maps operation errors to HTTP statuses
func StatusOf(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}

	switch escrow.KindOf(err) {
	case escrow.KindValidation:
		return http.StatusBadRequest
	case escrow.KindState:
		return http.StatusConflict
	case escrow.KindAuthorization:
		return http.StatusForbidden
	case escrow.KindNotFound:
		return http.StatusNotFound
	case escrow.KindFunds, escrow.KindArithmetic:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Responds with a failed operation
func (self *Server) abortWithError(c *gin.Context, err error) {
	status := StatusOf(err)
	c.AbortWithStatusJSON(status, &response.Error{
		Error: err.Error(),
		Code:  escrow.CodeOf(err),
	})

	log := logger.LOGE(c, err, status)
	if status >= http.StatusInternalServerError {
		log.Error("Operation failed")
	} else {
		log.Debug("Operation rejected")
	}
}

// Responds with an error that happened before reaching the engine
func (self *Server) abortTransport(c *gin.Context, status int, code string, err error) {
	if status == http.StatusBadRequest {
		self.report.Errors.BadRequest.Inc()
	}
	c.AbortWithStatusJSON(status, &response.Error{
		Error: err.Error(),
		Code:  code,
	})
	logger.LOGE(c, err, status).Debug("Request rejected")
}
