package monitor_escrow

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

func TestMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}

type MonitorTestSuite struct {
	suite.Suite
	monitor *Monitor
}

func (s *MonitorTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.monitor = NewMonitor().WithMaxHistorySize(3)
}

func (s *MonitorTestSuite) TestOperationsRate() {
	state := &s.monitor.Report.Escrow.State

	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().Equal(0.0, state.AverageOperationsPerMinute.Load())

	state.Donations.Add(4)
	state.CampaignsCreated.Add(2)
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().Equal(6.0, state.AverageOperationsPerMinute.Load())

	state.Refunds.Add(2)
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().Equal(4.0, state.AverageOperationsPerMinute.Load())

	// Oldest sample falls out of the window
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().Equal(3, s.monitor.Operations.Len())
	s.Require().Equal(1.0, state.AverageOperationsPerMinute.Load())
}

func (s *MonitorTestSuite) TestHealth() {
	s.Require().True(s.monitor.IsOK())

	s.monitor.Report.Escrow.Errors.Internal.Inc()
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().False(s.monitor.IsOK())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	s.monitor.OnGetHealth(c)
	s.Require().Equal(http.StatusServiceUnavailable, w.Code)

	// No new failures within the next window
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().True(s.monitor.IsOK())
}

func (s *MonitorTestSuite) TestBusinessErrorsKeepHealth() {
	s.monitor.Report.Escrow.Errors.State.Add(10)
	s.monitor.Report.Escrow.Errors.Validation.Add(10)
	s.Require().Nil(s.monitor.monitorOperations())
	s.Require().True(s.monitor.IsOK())
}

func (s *MonitorTestSuite) TestCollector() {
	s.monitor.Report.Escrow.State.Donations.Add(7)
	s.monitor.Report.Escrow.Errors.Funds.Add(2)

	collector := s.monitor.GetPrometheusCollector()
	s.Require().Equal(1, testutil.CollectAndCount(collector, "donations"))
	s.Require().Equal(7, testutil.CollectAndCount(collector, "operation_errors"))
	s.Require().Greater(testutil.CollectAndCount(collector), 20)
}
