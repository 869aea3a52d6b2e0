package server

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/server/response"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/config"
	monitor_escrow "github.com/veesr/escrow/src/utils/monitoring/escrow"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
	config  *config.Config
	ledger  *ledger.Memory
	engine  *escrow.Engine
	monitor *monitor_escrow.Monitor
	server  *Server

	authority ed25519.PrivateKey
	donor     ed25519.PrivateKey
	stranger  ed25519.PrivateKey

	// Last X-Timestamp used, every signed request gets a new one
	stamp int64
}

func key(seed byte) ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
}

func identity(key ed25519.PrivateKey) address.Identity {
	out, err := address.FromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		panic(err)
	}
	return out
}

func (s *ServerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.authority = key(1)
	s.donor = key(2)
	s.stranger = key(3)
}

func (s *ServerTestSuite) SetupTest() {
	s.config = config.Default()
	s.config.IsDevelopment = true
	s.config.Server.RateLimit = 0
	s.config.Server.MaxBodySize = 4096
	s.stamp = time.Now().UnixMilli()

	var err error
	s.ledger = ledger.NewMemory(s.config)
	s.monitor = monitor_escrow.NewMonitor()
	s.engine, err = escrow.NewEngine(s.config)
	s.Require().Nil(err)
	s.engine = s.engine.WithLedger(s.ledger).WithMonitor(s.monitor)

	s.server = NewServer(s.config).
		WithEngine(s.engine).
		WithMonitor(s.monitor)
}

func (s *ServerTestSuite) TearDownTest() {
	s.ledger.Close()
}

func (s *ServerTestSuite) nextTimestamp() int64 {
	s.stamp++
	return s.stamp
}

// Auth headers of a request signed by key on behalf of signer
func (s *ServerTestSuite) signed(signer, key ed25519.PrivateKey, method, path string, timestamp int64, body []byte) []string {
	return []string{
		HeaderSigner, identity(signer).String(),
		HeaderTimestamp, strconv.FormatInt(timestamp, 10),
		HeaderSignature, Sign(key, method, path, timestamp, body),
	}
}

func (s *ServerTestSuite) request(key ed25519.PrivateKey, method, path string, body interface{}, headers ...string) *http.Request {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		s.Require().Nil(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if key != nil {
		headers = append(s.signed(key, key, method, path, s.nextTimestamp(), raw), headers...)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return req
}

func (s *ServerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.server.Router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) do(key ed25519.PrivateKey, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	return s.serve(s.request(key, method, path, body, headers...))
}

// Same request with the same headers
func (s *ServerTestSuite) resend(req *http.Request, body interface{}) *httptest.ResponseRecorder {
	again := s.request(nil, req.Method, req.URL.Path, body)
	again.Header = req.Header.Clone()
	return s.serve(again)
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	s.Require().Nil(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *ServerTestSuite) requireError(w *httptest.ResponseRecorder, status int, code string) {
	s.Require().Equal(status, w.Code, w.Body.String())
	var e response.Error
	s.decode(w, &e)
	s.Require().Equal(code, e.Code)
	s.Require().NotEmpty(e.Error)
}

func (s *ServerTestSuite) airdrop(key ed25519.PrivateKey, lamports uint64) {
	w := s.do(nil, http.MethodPost, "/v1/airdrop", map[string]interface{}{
		"to":       identity(key).String(),
		"lamports": lamports,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *ServerTestSuite) createCampaign(target uint64) string {
	s.airdrop(s.authority, 20_000_000)
	w := s.do(s.authority, http.MethodPost, "/v1/campaigns", map[string]interface{}{
		"title":         "Solar panels for the clinic",
		"description":   "Off grid power for the maternity ward",
		"target_amount": target,
		"category":      "energy",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var out escrow.CreateCampaignResult
	s.decode(w, &out)
	return out.Campaign.Address.String()
}

func (s *ServerTestSuite) TestFundedCampaign() {
	campaign := s.createCampaign(1000)
	s.airdrop(s.donor, 10_000_000)

	w := s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", map[string]interface{}{"amount": 1000})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var donation escrow.DonationResult
	s.decode(w, &donation)
	s.Require().Equal("FUNDED", string(donation.Status))

	executor := identity(key(9))
	w = s.do(s.authority, http.MethodPost, "/v1/campaigns/"+campaign+"/withdraw", map[string]interface{}{
		"executor":        executor.String(),
		"platform_wallet": s.config.Escrow.PlatformWallet,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var withdrawal escrow.WithdrawResult
	s.decode(w, &withdrawal)
	s.Require().Equal(uint64(970), withdrawal.AmountToExecutor)
	s.Require().Equal(uint64(30), withdrawal.Fee)

	w = s.do(nil, http.MethodGet, "/v1/accounts/"+executor.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var account escrow.Account
	s.decode(w, &account)
	s.Require().Equal(uint64(970), account.Lamports)

	w = s.do(nil, http.MethodGet, "/v1/accounts/"+campaign, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	account = escrow.Account{}
	s.decode(w, &account)
	s.Require().Nil(account.Campaign)
	s.Require().Equal(uint64(0), account.Lamports)
}

func (s *ServerTestSuite) TestCancelAndRefund() {
	campaign := s.createCampaign(1000)
	s.airdrop(s.donor, 10_000_000)

	w := s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", map[string]interface{}{"amount": 200})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(s.authority, http.MethodPost, "/v1/campaigns/"+campaign+"/cancel", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cancelled escrow.CancelResult
	s.decode(w, &cancelled)
	s.Require().False(cancelled.Closed)
	s.Require().Equal("CANCELLED", string(cancelled.Status))

	// Empty body, receipt derived from the signer
	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/refund", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var refund escrow.RefundResult
	s.decode(w, &refund)
	s.Require().Equal(uint64(200), refund.Amount)

	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/refund", nil)
	s.requireError(w, http.StatusNotFound, "AccountNotFound")
}

func (s *ServerTestSuite) TestErrorMapping() {
	campaign := s.createCampaign(1000)

	w := s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", map[string]interface{}{"amount": 0})
	s.requireError(w, http.StatusBadRequest, "InvalidDonationAmount")

	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", map[string]interface{}{"amount": 10})
	s.requireError(w, http.StatusUnprocessableEntity, "InsufficientFunds")

	w = s.do(s.stranger, http.MethodPost, "/v1/campaigns/"+campaign+"/cancel", nil)
	s.requireError(w, http.StatusForbidden, "ConstraintHasOne")

	w = s.do(s.authority, http.MethodPost, "/v1/campaigns/"+campaign+"/withdraw", map[string]interface{}{
		"executor":        identity(s.authority).String(),
		"platform_wallet": s.config.Escrow.PlatformWallet,
	})
	s.requireError(w, http.StatusConflict, "CampaignNotFunded")

	unknown := identity(key(42)).String()
	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/"+unknown+"/donations", map[string]interface{}{"amount": 10})
	s.requireError(w, http.StatusNotFound, "AccountNotFound")

	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/not-an-address/donations", map[string]interface{}{"amount": 10})
	s.requireError(w, http.StatusBadRequest, "InvalidIdentity")

	w = s.do(s.authority, http.MethodPost, "/v1/campaigns", map[string]interface{}{
		"title":         "",
		"description":   "x",
		"target_amount": 1,
	})
	s.requireError(w, http.StatusBadRequest, "InvalidTitle")

	w = s.do(s.stranger, http.MethodPost, "/v1/campaigns", map[string]interface{}{
		"title":         "x",
		"description":   "x",
		"target_amount": 1,
		"category":      "sports",
	})
	s.requireError(w, http.StatusBadRequest, "InvalidCategory")

	w = s.do(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", "not an object")
	s.requireError(w, http.StatusBadRequest, "BadRequest")
	s.Require().Equal(uint64(1), s.monitor.Report.Server.Errors.BadRequest.Load())
}

func (s *ServerTestSuite) TestSignature() {
	campaign := s.createCampaign(1000)
	path := "/v1/campaigns/" + campaign + "/cancel"
	now := time.Now().UnixMilli()

	// No headers
	w := s.do(nil, http.MethodPost, path, nil)
	s.requireError(w, http.StatusUnauthorized, "MissingSigner")

	// Signed by someone else
	w = s.do(nil, http.MethodPost, path, nil, s.signed(s.authority, s.stranger, http.MethodPost, path, now, nil)...)
	s.requireError(w, http.StatusUnauthorized, "BadSignature")

	// Signature of another route
	w = s.do(nil, http.MethodPost, path, nil,
		s.signed(s.authority, s.authority, http.MethodPost, "/v1/campaigns/"+campaign+"/refund", now, nil)...)
	s.requireError(w, http.StatusUnauthorized, "BadSignature")

	// Timestamp differs from the signed one
	headers := s.signed(s.authority, s.authority, http.MethodPost, path, now, nil)
	headers = append(headers, HeaderTimestamp, strconv.FormatInt(now+1, 10))
	w = s.do(nil, http.MethodPost, path, nil, headers...)
	s.requireError(w, http.StatusUnauthorized, "BadSignature")

	w = s.do(nil, http.MethodPost, path, nil,
		HeaderSigner, identity(s.authority).String(),
		HeaderTimestamp, strconv.FormatInt(now, 10),
		HeaderSignature, "0OIl")
	s.requireError(w, http.StatusUnauthorized, "BadSignature")

	s.Require().Equal(uint64(5), s.monitor.Report.Server.Errors.BadSignature.Load())

	// Campaign untouched
	w = s.do(nil, http.MethodGet, "/v1/accounts/"+campaign, nil)
	var account escrow.Account
	s.decode(w, &account)
	s.Require().NotNil(account.Campaign)
}

func (s *ServerTestSuite) TestTimestamp() {
	campaign := s.createCampaign(1000)
	path := "/v1/campaigns/" + campaign + "/cancel"
	maxAge := s.config.Server.SignatureMaxAge

	w := s.do(nil, http.MethodPost, path, nil,
		HeaderSigner, identity(s.authority).String(),
		HeaderSignature, Sign(s.authority, http.MethodPost, path, 0, nil))
	s.requireError(w, http.StatusUnauthorized, "BadTimestamp")

	old := time.Now().Add(-maxAge - time.Minute).UnixMilli()
	w = s.do(nil, http.MethodPost, path, nil, s.signed(s.authority, s.authority, http.MethodPost, path, old, nil)...)
	s.requireError(w, http.StatusUnauthorized, "StaleSignature")

	future := time.Now().Add(maxAge + time.Minute).UnixMilli()
	w = s.do(nil, http.MethodPost, path, nil, s.signed(s.authority, s.authority, http.MethodPost, path, future, nil)...)
	s.requireError(w, http.StatusUnauthorized, "StaleSignature")

	// A valid request turns stale once the clock moves past the window
	req := s.request(s.authority, http.MethodPost, path, nil)
	s.server.WithClock(func() time.Time { return time.Now().Add(maxAge + time.Minute) })
	s.requireError(s.serve(req), http.StatusUnauthorized, "StaleSignature")

	s.server.WithClock(time.Now)
	w = s.resend(req, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *ServerTestSuite) TestReplayedRequest() {
	campaign := s.createCampaign(1000)
	path := "/v1/campaigns/" + campaign + "/cancel"

	cancel := s.request(s.authority, http.MethodPost, path, nil)
	w := s.serve(cancel)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cancelled escrow.CancelResult
	s.decode(w, &cancelled)
	s.Require().True(cancelled.Closed)

	// Same authority, same address
	s.Require().Equal(campaign, s.createCampaign(1000))

	w = s.resend(cancel, nil)
	s.requireError(w, http.StatusUnauthorized, "ReplayedSignature")
	s.Require().Equal(uint64(1), s.monitor.Report.Server.Errors.ReplayedSignature.Load())

	// The new campaign is still there
	w = s.do(nil, http.MethodGet, "/v1/accounts/"+campaign, nil)
	var account escrow.Account
	s.decode(w, &account)
	s.Require().NotNil(account.Campaign)
	s.Require().Equal("ACTIVE", string(account.Campaign.Status))

	// A rejected request also uses up its signature
	s.airdrop(s.donor, 10_000_000)
	donate := s.request(s.donor, http.MethodPost, "/v1/campaigns/"+campaign+"/donations", map[string]interface{}{"amount": 0})
	s.requireError(s.serve(donate), http.StatusBadRequest, "InvalidDonationAmount")
	s.requireError(s.resend(donate, map[string]interface{}{"amount": 0}), http.StatusUnauthorized, "ReplayedSignature")
}

func (s *ServerTestSuite) TestIdempotency() {
	campaign := s.createCampaign(1000)
	s.airdrop(s.donor, 10_000_000)
	path := "/v1/campaigns/" + campaign + "/donations"

	first := s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-1")
	s.Require().Equal(http.StatusCreated, first.Code, first.Body.String())

	second := s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-1")
	s.Require().Equal(http.StatusCreated, second.Code)
	s.Require().JSONEq(first.Body.String(), second.Body.String())
	s.Require().Equal(uint64(1), s.monitor.Report.Server.State.IdempotentReplays.Load())
	s.Require().Equal(uint64(1), s.monitor.Report.Escrow.State.Donations.Load())

	// A new key runs the operation again
	third := s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-2")
	s.requireError(third, http.StatusConflict, "AccountAlreadyInUse")

	// Failures aren't stored
	fourth := s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-2")
	s.requireError(fourth, http.StatusConflict, "AccountAlreadyInUse")
	s.Require().Equal(uint64(1), s.monitor.Report.Server.State.IdempotentReplays.Load())
}

func (s *ServerTestSuite) TestIdempotencyKeyInProgress() {
	campaign := s.createCampaign(1000)
	s.airdrop(s.donor, 10_000_000)
	path := "/v1/campaigns/" + campaign + "/donations"
	key := idempotencyCacheKey(identity(s.donor), http.MethodPost, path, "donation-1")

	// Another request holds the key
	s.server.idempotency.Set(key, pendingResponse{}, cache.DefaultExpiration)
	w := s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-1")
	s.requireError(w, http.StatusConflict, "RequestInProgress")
	s.Require().Equal(uint64(0), s.monitor.Report.Escrow.State.Donations.Load())

	s.server.idempotency.Delete(key)
	w = s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 100}, HeaderIdempotencyKey, "donation-1")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	stored, found := s.server.idempotency.Get(key)
	s.Require().True(found)
	s.Require().IsType(&storedResponse{}, stored)

	// A failed request doesn't keep its key reserved
	w = s.do(s.donor, http.MethodPost, path, map[string]interface{}{"amount": 0}, HeaderIdempotencyKey, "donation-2")
	s.requireError(w, http.StatusBadRequest, "InvalidDonationAmount")
	_, found = s.server.idempotency.Get(idempotencyCacheKey(identity(s.donor), http.MethodPost, path, "donation-2"))
	s.Require().False(found)
}

func (s *ServerTestSuite) TestBodyLimit() {
	campaign := s.createCampaign(1000)
	w := s.do(s.authority, http.MethodPost, "/v1/campaigns/"+campaign+"/withdraw", map[string]interface{}{
		"padding": strings.Repeat("x", 5000),
	})
	s.requireError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge")
}

func (s *ServerTestSuite) TestMonitorEndpoints() {
	s.createCampaign(1000)

	w := s.do(nil, http.MethodGet, "/v1/health", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(nil, http.MethodGet, "/v1/state", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var state map[string]interface{}
	s.decode(w, &state)
	s.Require().Contains(state, "escrow")
	s.Require().Contains(state, "server")

	w = s.do(nil, http.MethodGet, "/metrics", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Contains(w.Body.String(), `campaigns_created{app="escrow"} 1`)
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, StatusOf(escrow.ErrInvalidTitle))
	require.Equal(t, http.StatusConflict, StatusOf(escrow.ErrCampaignExpired))
	require.Equal(t, http.StatusForbidden, StatusOf(escrow.ErrInvalidRefundRequest))
	require.Equal(t, http.StatusNotFound, StatusOf(ledger.ErrAccountNotFound))
	require.Equal(t, http.StatusUnprocessableEntity, StatusOf(escrow.ErrArithmeticOverflow))
	require.Equal(t, http.StatusInternalServerError, StatusOf(ledger.ErrPanic))
}
