package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/validation"
	"github.com/vibast-solutions/go-donation-client/config"
)

var tierFlags struct {
	entryPoint string
	amount     float64
	anonymous  bool
}

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Show which donor details an amount requires",
	RunE:  runTier,
}

func init() {
	rootCmd.AddCommand(tierCmd)

	tierCmd.Flags().StringVar(&tierFlags.entryPoint, "entry-point", string(entity.EntryPointPublicCheckout), "Screen the donation comes from")
	tierCmd.Flags().Float64Var(&tierFlags.amount, "amount", 0, "Donation amount in rupees")
	tierCmd.Flags().BoolVar(&tierFlags.anonymous, "anonymous", false, "Whether the donor wants to stay anonymous")
}

type tierOutput struct {
	Threshold       float64            `json:"threshold"`
	RequiresDetails bool               `json:"requiresDetails"`
	AllowAnonymous  bool               `json:"allowAnonymous"`
	Required        []validation.Field `json:"required"`
	Optional        []validation.Field `json:"optional"`
	Blocked         bool               `json:"blocked"`
	Message         string             `json:"message,omitempty"`
}

func runTier(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	threshold, err := thresholdFor(cfg, entity.EntryPoint(strings.TrimSpace(tierFlags.entryPoint)))
	if err != nil {
		return err
	}

	tier := validation.ResolveTier(tierFlags.amount, tierFlags.anonymous, threshold)
	out := &tierOutput{
		Threshold:       tier.Threshold,
		RequiresDetails: tier.RequiresDetails,
		AllowAnonymous:  tier.AllowAnonymous,
		Required:        tier.Required.Sorted(),
		Optional:        tier.Optional.Sorted(),
		Blocked:         tier.Blocking(),
	}
	if tier.Blocking() {
		var verr *validation.Error
		if errors.As(validation.ValidateIntent(&entity.DonationIntent{Amount: tierFlags.amount, IsAnonymous: tierFlags.anonymous}, tier), &verr) {
			out.Message = verr.Message
		}
	}
	return printJSON(cmd.OutOrStdout(), out)
}
