package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Key of the request scoped logger in gin.Context
const ContextKey = "logger"

// LOG returns the logger attached to the request, falls back to a generic one
func LOG(c *gin.Context) *logrus.Entry {
	value, ok := c.Get(ContextKey)
	if ok {
		if entry, ok := value.(*logrus.Entry); ok {
			return entry
		}
	}
	return NewSublogger("rest")
}

// LOGE is LOG with the error and the response status attached
func LOGE(c *gin.Context, err error, status int) *logrus.Entry {
	entry := LOG(c).WithField("status", status)
	if err != nil {
		entry = entry.WithError(err)
	}
	return entry
}
