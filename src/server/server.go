package server

import (
	"context"
	"net/http"
	"time"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/monitoring"
	"github.com/veesr/escrow/src/utils/monitoring/report"
	"github.com/veesr/escrow/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/ratelimit"
)

// Rest API server, exposes campaign operations and monitor counters
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	engine  *escrow.Engine
	monitor monitoring.Monitor
	report  *report.ServerReport

	// Responses of requests with an Idempotency-Key, nil when disabled
	idempotency *cache.Cache

	// Signatures already accepted
	signatures      *cache.Cache
	signatureMaxAge time.Duration
	clock           func() time.Time

	limiter ratelimit.Limiter
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "rest").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	self.report = &report.ServerReport{}

	if config.Server.IdempotencyTTL > 0 {
		self.idempotency = cache.New(config.Server.IdempotencyTTL, config.Server.IdempotencyTTL/2)
	}

	self.clock = time.Now
	self.signatureMaxAge = config.Server.SignatureMaxAge
	if self.signatureMaxAge <= 0 {
		self.signatureMaxAge = defaultSignatureMaxAge
	}
	self.signatures = newSignatureCache(self.signatureMaxAge)

	if config.Server.RateLimit > 0 {
		self.limiter = ratelimit.New(config.Server.RateLimit)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery(), self.requestLogger(), self.pace())

	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.onGetHealth)
		v1.GET("state", self.onGetState)
		v1.GET("accounts/:address", self.onGetAccount)

		// Operations need a signature of the request
		signed := v1.Group("", self.limitBody(), self.authenticate(), self.idempotent(), self.singleUse())
		{
			signed.POST("campaigns", self.onCreateCampaign)
			signed.POST("campaigns/:address/donations", self.onDonate)
			signed.POST("campaigns/:address/withdraw", self.onWithdraw)
			signed.POST("campaigns/:address/cancel", self.onCancel)
			signed.POST("campaigns/:address/refund", self.onRefund)
		}

		if config.IsDevelopment {
			v1.POST("airdrop", self.limitBody(), self.onAirdrop)
		}
	}

	if config.Profiler.Enabled {
		pprof.Register(self.Router)
	}

	self.httpServer = &http.Server{
		Addr:              config.RESTListenAddress,
		Handler:           self.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return
}

func (self *Server) WithEngine(engine *escrow.Engine) *Server {
	self.engine = engine
	return self
}

func (self *Server) WithClock(clock func() time.Time) *Server {
	self.clock = clock
	return self
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	self.report = monitor.GetReport().Server

	registry := prometheus.NewRegistry()
	registry.MustRegister(monitor.GetPrometheusCollector())
	self.Router.GET("metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return self
}

func (self *Server) run() (err error) {
	if self.Config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Log.WithField("address", self.Config.RESTListenAddress).Info("Starting REST server")

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}

func (self *Server) onGetHealth(c *gin.Context) {
	self.monitor.OnGetHealth(c)
}

func (self *Server) onGetState(c *gin.Context) {
	self.monitor.OnGetState(c)
}
