package server

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/veesr/escrow/src/utils/address"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"github.com/patrickmn/go-cache"
)

const (
	HeaderSigner    = "X-Signer"
	HeaderSignature = "X-Signature"

	// Unix milliseconds of the moment the request was signed
	HeaderTimestamp = "X-Timestamp"

	signerKey    = "signer"
	signatureKey = "signature"

	defaultSignatureMaxAge = 5 * time.Minute
)

var (
	ErrMissingSigner     = errors.New("missing or malformed signer")
	ErrBadSignature      = errors.New("invalid request signature")
	ErrBadTimestamp      = errors.New("missing or malformed timestamp")
	ErrStaleSignature    = errors.New("request timestamp outside of the accepted window")
	ErrReplayedSignature = errors.New("request signature already used")
)

// SignedMessage is what the signer signs: method, path, timestamp and the raw body.
// Binding the route prevents replaying a body against another operation.
func SignedMessage(method, path string, timestamp int64, body []byte) []byte {
	ts := strconv.FormatInt(timestamp, 10)
	out := make([]byte, 0, len(method)+len(path)+len(ts)+len(body)+3)
	out = append(out, method...)
	out = append(out, '\n')
	out = append(out, path...)
	out = append(out, '\n')
	out = append(out, ts...)
	out = append(out, '\n')
	return append(out, body...)
}

// Sign returns the X-Signature header value for a request sent with the given X-Timestamp
func Sign(key ed25519.PrivateKey, method, path string, timestamp int64, body []byte) string {
	return base58.Encode(ed25519.Sign(key, SignedMessage(method, path, timestamp, body)))
}

// Signer of the request, set by authenticate
func signer(c *gin.Context) address.Identity {
	return c.MustGet(signerKey).(address.Identity)
}

// Accepted signatures are remembered for the whole span a timestamp stays fresh
func newSignatureCache(maxAge time.Duration) *cache.Cache {
	return cache.New(2*maxAge, maxAge)
}

// Verifies the ed25519 signature of the request, the signer's identity is its public key
func (self *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				self.abortTransport(c, http.StatusRequestEntityTooLarge, "RequestTooLarge", err)
				return
			}
			self.abortTransport(c, http.StatusBadRequest, "BadRequest", err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		identity, err := address.Parse(c.GetHeader(HeaderSigner))
		if err != nil {
			self.report.Errors.BadSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "MissingSigner", ErrMissingSigner)
			return
		}

		timestamp, err := strconv.ParseInt(c.GetHeader(HeaderTimestamp), 10, 64)
		if err != nil {
			self.report.Errors.BadSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "BadTimestamp", ErrBadTimestamp)
			return
		}

		age := self.clock().Sub(time.UnixMilli(timestamp))
		if age > self.signatureMaxAge || age < -self.signatureMaxAge {
			self.report.Errors.BadSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "StaleSignature", ErrStaleSignature)
			return
		}

		signature, err := base58.Decode(c.GetHeader(HeaderSignature))
		if err != nil || len(signature) != ed25519.SignatureSize {
			self.report.Errors.BadSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "BadSignature", ErrBadSignature)
			return
		}

		message := SignedMessage(c.Request.Method, c.Request.URL.Path, timestamp, body)
		if !ed25519.Verify(ed25519.PublicKey(identity.Bytes()), message, signature) {
			self.report.Errors.BadSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "BadSignature", ErrBadSignature)
			return
		}

		c.Set(signerKey, identity)
		c.Set(signatureKey, base58.Encode(signature))
		c.Next()
	}
}

// Lets every signature through once.
// Runs after idempotent, so a retry with a stored Idempotency-Key still gets its response.
func (self *Server) singleUse() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := self.signatures.Add(c.GetString(signatureKey), struct{}{}, cache.DefaultExpiration)
		if err != nil {
			self.report.Errors.ReplayedSignature.Inc()
			self.abortTransport(c, http.StatusUnauthorized, "ReplayedSignature", ErrReplayedSignature)
			return
		}
		c.Next()
	}
}
