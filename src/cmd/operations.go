package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veesr/escrow/src/escrow"
	"github.com/veesr/escrow/src/ledger"
	"github.com/veesr/escrow/src/utils/address"
	"github.com/veesr/escrow/src/utils/model"

	"github.com/spf13/cobra"
)

// Operation commands talk to the configured ledger directly, the operator is trusted to act as the signer.
// With the memory backend state lives only as long as the command.

var (
	signerFlag   string
	campaignFlag string
	receiptFlag  string
	executorFlag string
	platformFlag string
	amountFlag   uint64

	createFlags escrow.CreateCampaignRequest
	categoryArg string
)

func init() {
	createCmd.Flags().StringVar(&createFlags.Title, "title", "", "campaign title, up to 50 bytes")
	createCmd.Flags().StringVar(&createFlags.Description, "description", "", "campaign description, up to 500 bytes")
	createCmd.Flags().Uint64Var(&createFlags.TargetAmount, "target", 0, "funding target in lamports")
	createCmd.Flags().StringVar(&createFlags.Location, "location", "", "location, up to 100 bytes")
	createCmd.Flags().StringSliceVar(&createFlags.Metrics, "metric", nil, "impact metric, repeatable, up to 5")
	createCmd.Flags().StringSliceVar(&createFlags.MediaUris, "media", nil, "media uri, repeatable, up to 5")
	createCmd.Flags().StringVar(&categoryArg, "category", string(model.CampaignCategoryOther), "campaign category")

	donateCmd.Flags().Uint64Var(&amountFlag, "amount", 0, "donation in lamports")

	withdrawCmd.Flags().StringVar(&executorFlag, "executor", "", "wallet receiving the funds, defaults to the signer")
	withdrawCmd.Flags().StringVar(&platformFlag, "platform-wallet", "", "platform fee wallet, defaults to the configured one")

	refundCmd.Flags().StringVar(&receiptFlag, "receipt", "", "donation receipt, derived from the campaign and the signer by default")

	airdropCmd.Flags().Uint64Var(&amountFlag, "amount", 0, "lamports to mint")

	for _, cmd := range []*cobra.Command{createCmd, donateCmd, withdrawCmd, cancelCmd, refundCmd, airdropCmd} {
		cmd.Flags().StringVar(&signerFlag, "signer", "", "identity of the signer, base58")
		_ = cmd.MarkFlagRequired("signer")
	}

	for _, cmd := range []*cobra.Command{donateCmd, withdrawCmd, cancelCmd, refundCmd} {
		cmd.Flags().StringVar(&campaignFlag, "campaign", "", "campaign address, derived from the signer for withdraw and cancel by default")
	}

	RootCmd.AddCommand(createCmd, donateCmd, withdrawCmd, cancelCmd, refundCmd, accountCmd, airdropCmd)
}

// Runs fn with an engine over the configured ledger
func withEngine(fn func(engine *escrow.Engine) (interface{}, error)) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		l, release, err := ledger.New(applicationCtx, conf)
		if err != nil {
			return
		}
		defer release()

		engine, err := escrow.NewEngine(conf)
		if err != nil {
			return
		}

		out, err := fn(engine.WithLedger(l))
		if err != nil {
			return fmt.Errorf("%s: %w", escrow.CodeOf(err), err)
		}

		buf, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(buf))
		return
	}
}

func parseOptional(value string, fallback address.Identity) (address.Identity, error) {
	if value == "" {
		return fallback, nil
	}
	return address.Parse(value)
}

// Campaign from the flag or the one owned by the signer
func campaignAddress(engine *escrow.Engine, signer address.Identity, derive bool) (out address.Identity, err error) {
	if campaignFlag != "" || !derive {
		return address.Parse(campaignFlag)
	}
	out, _, err = engine.CampaignAddress(signer)
	return
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates the signer's campaign",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		createFlags.Category, err = model.ParseCampaignCategory(categoryArg)
		if err != nil {
			return nil, escrow.ErrInvalidCategory
		}

		return engine.CreateCampaign(applicationCtx, signer, &createFlags)
	}),
}

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Donates to a campaign",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		campaign, err := campaignAddress(engine, signer, false)
		if err != nil {
			return
		}

		return engine.DonateToCampaign(applicationCtx, signer, campaign, amountFlag)
	}),
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Pays out a funded campaign and closes it",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		req := new(escrow.WithdrawRequest)
		req.Campaign, err = campaignAddress(engine, signer, true)
		if err != nil {
			return
		}

		req.Executor, err = parseOptional(executorFlag, signer)
		if err != nil {
			return
		}

		req.PlatformWallet, err = parseOptional(platformFlag, engine.Fees().PlatformWallet)
		if err != nil {
			return
		}

		return engine.WithdrawAndComplete(applicationCtx, signer, req)
	}),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancels a campaign, closes it if there are no donations",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		campaign, err := campaignAddress(engine, signer, true)
		if err != nil {
			return
		}

		return engine.CancelCampaign(applicationCtx, signer, campaign)
	}),
}

var refundCmd = &cobra.Command{
	Use:   "refund",
	Short: "Claims the refund of a donation to a cancelled campaign",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		campaign, err := campaignAddress(engine, signer, false)
		if err != nil {
			return
		}

		receipt, err := parseOptional(receiptFlag, address.Zero)
		if err != nil {
			return
		}

		return engine.ClaimRefund(applicationCtx, signer, campaign, receipt)
	}),
}

var accountCmd = &cobra.Command{
	Use:   "account <address>",
	Short: "Prints the campaign, receipt or balance stored at the address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
			addr, err := address.Parse(args[0])
			if err != nil {
				return
			}
			return engine.Account(applicationCtx, addr)
		})(cmd, args)
	},
}

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Mints lamports to the signer, development mode only",
	RunE: withEngine(func(engine *escrow.Engine) (out interface{}, err error) {
		if !conf.IsDevelopment {
			return nil, errors.New("airdrop is available only in development mode")
		}

		signer, err := address.Parse(signerFlag)
		if err != nil {
			return
		}

		err = engine.Airdrop(applicationCtx, signer, amountFlag)
		if err != nil {
			return
		}

		return engine.Account(applicationCtx, signer)
	}),
}
