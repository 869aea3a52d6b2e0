package server

import (
	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/config"
	monitor_escrow "github.com/veesr/escrow/src/utils/monitoring/escrow"
	"github.com/veesr/escrow/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that wires the ledger, the engine and the REST API
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	monitor := monitor_escrow.NewMonitor().
		WithMaxHistorySize(30)

	l, release, err := ledger.New(self.Ctx, config)
	if err != nil {
		return
	}

	engine, err := escrow.NewEngine(config)
	if err != nil {
		release()
		return
	}
	engine = engine.
		WithLedger(l).
		WithMonitor(monitor)

	server := NewServer(config).
		WithEngine(engine).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithOnAfterStop(release)

	return
}
