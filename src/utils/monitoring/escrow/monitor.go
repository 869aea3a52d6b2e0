package monitor_escrow

import (
	"math"
	"net/http"
	"time"

	"github.com/veesr/escrow/src/utils/monitoring/report"
	"github.com/veesr/escrow/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int
	collector   *Collector

	// Operation processing speed, one sample per minute
	Operations *deque.Deque[uint64]

	// Internal errors seen at the last sample
	lastInternalErrors atomic.Uint64
	healthy            atomic.Bool
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:    &report.RunReport{},
		Escrow: &report.EscrowReport{},
		Server: &report.ServerReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())
	self.healthy.Store(true)

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Second, self.monitorUptime).
		WithPeriodicSubtaskFunc(time.Minute, self.monitorOperations)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.Operations = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

func (self *Monitor) monitorUptime() (err error) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))
	return
}

// Measure operation processing speed
func (self *Monitor) monitorOperations() (err error) {
	internal := self.Report.Escrow.Errors.Internal.Load()
	self.healthy.Store(internal == self.lastInternalErrors.Swap(internal))

	self.Operations.PushBack(self.Report.Escrow.Operations())
	if self.Operations.Len() > self.historySize {
		self.Operations.PopFront()
	}
	if self.Operations.Len() < 2 {
		return
	}

	value := float64(self.Operations.Back()-self.Operations.Front()) / float64(self.Operations.Len()-1)
	self.Report.Escrow.State.AverageOperationsPerMinute.Store(round(value))
	return
}

// Unhealthy when the ledger failed internally during the last minute.
// Rejected operations don't count.
func (self *Monitor) IsOK() bool {
	return self.healthy.Load()
}

func (self *Monitor) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
