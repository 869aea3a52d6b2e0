package monitor_escrow

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	StartTimestamp *prometheus.Desc
	UpForSeconds   *prometheus.Desc

	// Escrow
	CampaignsCreated  *prometheus.Desc
	CampaignsFunded   *prometheus.Desc
	CampaignsClosed   *prometheus.Desc
	Donations         *prometheus.Desc
	DonatedLamports   *prometheus.Desc
	Withdrawals       *prometheus.Desc
	WithdrawnLamports *prometheus.Desc
	FeesLamports      *prometheus.Desc
	Cancellations     *prometheus.Desc
	Refunds           *prometheus.Desc
	RefundedLamports  *prometheus.Desc
	OperationsPerMin  *prometheus.Desc
	OperationErrors   *prometheus.Desc

	// Server
	Requests          *prometheus.Desc
	IdempotentReplays *prometheus.Desc
	BadSignature      *prometheus.Desc
	ReplayedSignature *prometheus.Desc
	BadRequest        *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "escrow",
	}

	return &Collector{
		// Run
		StartTimestamp: prometheus.NewDesc("start_timestamp", "", nil, labels),
		UpForSeconds:   prometheus.NewDesc("up_for_seconds", "", nil, labels),

		// Escrow
		CampaignsCreated:  prometheus.NewDesc("campaigns_created", "", nil, labels),
		CampaignsFunded:   prometheus.NewDesc("campaigns_funded", "", nil, labels),
		CampaignsClosed:   prometheus.NewDesc("campaigns_closed", "", nil, labels),
		Donations:         prometheus.NewDesc("donations", "", nil, labels),
		DonatedLamports:   prometheus.NewDesc("donated_lamports", "", nil, labels),
		Withdrawals:       prometheus.NewDesc("withdrawals", "", nil, labels),
		WithdrawnLamports: prometheus.NewDesc("withdrawn_lamports", "", nil, labels),
		FeesLamports:      prometheus.NewDesc("fees_lamports", "", nil, labels),
		Cancellations:     prometheus.NewDesc("cancellations", "", nil, labels),
		Refunds:           prometheus.NewDesc("refunds", "", nil, labels),
		RefundedLamports:  prometheus.NewDesc("refunded_lamports", "", nil, labels),
		OperationsPerMin:  prometheus.NewDesc("average_operations_per_minute", "", nil, labels),
		OperationErrors:   prometheus.NewDesc("operation_errors", "Failed operations by error kind", []string{"kind"}, labels),

		// Server
		Requests:          prometheus.NewDesc("requests", "", nil, labels),
		IdempotentReplays: prometheus.NewDesc("idempotent_replays", "", nil, labels),
		BadSignature:      prometheus.NewDesc("bad_signature", "", nil, labels),
		ReplayedSignature: prometheus.NewDesc("replayed_signature", "", nil, labels),
		BadRequest:        prometheus.NewDesc("bad_request", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.StartTimestamp
	ch <- self.UpForSeconds

	// Escrow
	ch <- self.CampaignsCreated
	ch <- self.CampaignsFunded
	ch <- self.CampaignsClosed
	ch <- self.Donations
	ch <- self.DonatedLamports
	ch <- self.Withdrawals
	ch <- self.WithdrawnLamports
	ch <- self.FeesLamports
	ch <- self.Cancellations
	ch <- self.Refunds
	ch <- self.RefundedLamports
	ch <- self.OperationsPerMin
	ch <- self.OperationErrors

	// Server
	ch <- self.Requests
	ch <- self.IdempotentReplays
	ch <- self.BadSignature
	ch <- self.ReplayedSignature
	ch <- self.BadRequest
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report

	// Run
	ch <- prometheus.MustNewConstMetric(self.StartTimestamp, prometheus.GaugeValue, float64(r.Run.State.StartTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(r.Run.State.UpForSeconds.Load()))

	// Escrow
	ch <- prometheus.MustNewConstMetric(self.CampaignsCreated, prometheus.CounterValue, float64(r.Escrow.State.CampaignsCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.CampaignsFunded, prometheus.CounterValue, float64(r.Escrow.State.CampaignsFunded.Load()))
	ch <- prometheus.MustNewConstMetric(self.CampaignsClosed, prometheus.CounterValue, float64(r.Escrow.State.CampaignsClosed.Load()))
	ch <- prometheus.MustNewConstMetric(self.Donations, prometheus.CounterValue, float64(r.Escrow.State.Donations.Load()))
	ch <- prometheus.MustNewConstMetric(self.DonatedLamports, prometheus.CounterValue, float64(r.Escrow.State.DonatedLamports.Load()))
	ch <- prometheus.MustNewConstMetric(self.Withdrawals, prometheus.CounterValue, float64(r.Escrow.State.Withdrawals.Load()))
	ch <- prometheus.MustNewConstMetric(self.WithdrawnLamports, prometheus.CounterValue, float64(r.Escrow.State.WithdrawnLamports.Load()))
	ch <- prometheus.MustNewConstMetric(self.FeesLamports, prometheus.CounterValue, float64(r.Escrow.State.FeesLamports.Load()))
	ch <- prometheus.MustNewConstMetric(self.Cancellations, prometheus.CounterValue, float64(r.Escrow.State.Cancellations.Load()))
	ch <- prometheus.MustNewConstMetric(self.Refunds, prometheus.CounterValue, float64(r.Escrow.State.Refunds.Load()))
	ch <- prometheus.MustNewConstMetric(self.RefundedLamports, prometheus.CounterValue, float64(r.Escrow.State.RefundedLamports.Load()))
	ch <- prometheus.MustNewConstMetric(self.OperationsPerMin, prometheus.GaugeValue, r.Escrow.State.AverageOperationsPerMinute.Load())

	errs := &r.Escrow.Errors
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.Validation.Load()), "validation")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.State.Load()), "state")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.Authorization.Load()), "authorization")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.NotFound.Load()), "not_found")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.Funds.Load()), "funds")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.Arithmetic.Load()), "arithmetic")
	ch <- prometheus.MustNewConstMetric(self.OperationErrors, prometheus.CounterValue, float64(errs.Internal.Load()), "internal")

	// Server
	ch <- prometheus.MustNewConstMetric(self.Requests, prometheus.CounterValue, float64(r.Server.State.Requests.Load()))
	ch <- prometheus.MustNewConstMetric(self.IdempotentReplays, prometheus.CounterValue, float64(r.Server.State.IdempotentReplays.Load()))
	ch <- prometheus.MustNewConstMetric(self.BadSignature, prometheus.CounterValue, float64(r.Server.Errors.BadSignature.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReplayedSignature, prometheus.CounterValue, float64(r.Server.Errors.ReplayedSignature.Load()))
	ch <- prometheus.MustNewConstMetric(self.BadRequest, prometheus.CounterValue, float64(r.Server.Errors.BadRequest.Load()))
}
