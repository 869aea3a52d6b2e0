package monitoring

import (
	"github.com/veesr/escrow/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() (collector prometheus.Collector)
	IsOK() bool
	OnGetState(c *gin.Context)
	OnGetHealth(c *gin.Context)
}
