package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartpark/spotsim/config"
)

var spotsCmd = &cobra.Command{
	Use:   "spots",
	Short: "Spot related commands",
}

var spotsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List configured spot identifiers",
	RunE:  runSpotsLs,
}

func init() {
	spotsCmd.AddCommand(spotsLsCmd)
	rootCmd.AddCommand(spotsCmd)
}

func runSpotsLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for _, id := range cfg.Sim.SpotIDs() {
		fmt.Println(id)
	}
	return nil
}
