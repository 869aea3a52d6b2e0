package server

import (
	"errors"
	"net/http"

	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"
)

const (
	HeaderRequestId      = "X-Request-Id"
	HeaderIdempotencyKey = "Idempotency-Key"

	idempotencyKey = "idempotency"
	respondedKey   = "responded"
)

// Attaches a logger with a request id
func (self *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		self.report.State.Requests.Inc()

		id := xid.New().String()
		c.Header(HeaderRequestId, id)
		c.Set(logger.ContextKey, self.Log.
			WithField("request_id", id).
			WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path))

		c.Next()

		logger.LOG(c).WithField("status", c.Writer.Status()).Trace("Request handled")
	}
}

// Blocks until the request fits the configured rate
func (self *Server) pace() gin.HandlerFunc {
	return func(c *gin.Context) {
		self.limiter.Take()
		c.Next()
	}
}

func (self *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, self.Config.Server.MaxBodySize)
		c.Next()
	}
}

type storedResponse struct {
	status int
	body   interface{}
}

// Marks a key whose request is still running
type pendingResponse struct{}

var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

func idempotencyCacheKey(signer address.Identity, method, path, key string) string {
	return signer.String() + " " + method + " " + path + " " + key
}

// Replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the signer and the route, a key is reserved until its request finishes.
func (self *Server) idempotent() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || self.idempotency == nil {
			c.Next()
			return
		}

		key = idempotencyCacheKey(signer(c), c.Request.Method, c.Request.URL.Path, key)
		for {
			if item, found := self.idempotency.Get(key); found {
				switch v := item.(type) {
				case *storedResponse:
					self.report.State.IdempotentReplays.Inc()
					logger.LOG(c).Debug("Replaying stored response")
					c.AbortWithStatusJSON(v.status, v.body)
				default:
					self.abortTransport(c, http.StatusConflict, "RequestInProgress", ErrRequestInProgress)
				}
				return
			}

			// Add fails if another request took the key in the meantime
			if self.idempotency.Add(key, pendingResponse{}, cache.DefaultExpiration) == nil {
				break
			}
		}

		// Failed requests release the key
		defer func() {
			if !c.GetBool(respondedKey) {
				self.idempotency.Delete(key)
			}
		}()

		c.Set(idempotencyKey, key)
		c.Next()
	}
}

// Writes a successful response and remembers it if the request has an Idempotency-Key
func (self *Server) respond(c *gin.Context, status int, body interface{}) {
	if key := c.GetString(idempotencyKey); key != "" {
		self.idempotency.Set(key, &storedResponse{status: status, body: body}, cache.DefaultExpiration)
		c.Set(respondedKey, true)
	}
	c.JSON(status, body)
}
