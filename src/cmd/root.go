package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/veesr/escrow/src/utils/build_info"
	"github.com/veesr/escrow/src/utils/config"
	"github.com/veesr/escrow/src/utils/logger"

	"github.com/spf13/cobra"
)

var (
	RootCmd = &cobra.Command{
		Use:     "escrow",
		Short:   "Crowdfunding escrow: campaigns, donations, withdrawals and refunds",
		Version: build_info.Version,

		// All child commands will use this
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			// Setup a context that gets cancelled upon SIGINT
			applicationCtx, applicationCtxCancel = context.WithCancel(context.Background())

			signalChannel = make(chan os.Signal, 1)
			signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
			go func() {
				select {
				case <-signalChannel:
					applicationCtxCancel()
				case <-applicationCtx.Done():
				}
			}()

			// Load configuration
			conf, err = config.Load(cfgFile)
			if err != nil {
				return
			}

			// Setup logging
			err = logger.Init(conf)
			if err != nil {
				return
			}
			return
		},

		// Run after all commands
		PersistentPostRunE: func(cmd *cobra.Command, args []string) (err error) {
			signal.Stop(signalChannel)
			applicationCtxCancel()

			log := logger.NewSublogger("root-cmd")
			log.WithField("command", cmd.Name()).Debug("Finished")
			return
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Configuration
	conf    *config.Config
	cfgFile string

	// Context setup
	applicationCtx       context.Context
	applicationCtxCancel context.CancelFunc
	signalChannel        chan os.Signal
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path")
}
