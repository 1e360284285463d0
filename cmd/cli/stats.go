package main

import (
	"slices"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [service]",
	Short: "Show webhook success rate and processing time",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	services := a.Manager.Drivers()
	if len(args) == 1 {
		services = args
	}

	overall, err := a.Logs.Stats(cmd.Context(), "")
	if err != nil {
		return err
	}
	cmd.Printf("Overall: %d total, %.2f%% success, %.2f ms avg\n\n",
		overall.Total, overall.SuccessRate(), overall.AverageProcessingTime())

	slices.Sort(services)
	for _, service := range services {
		st, err := a.Logs.Stats(cmd.Context(), service)
		if err != nil {
			return err
		}
		cmd.Printf("  %s\n", service)
		cmd.Printf("    Total:      %d\n", st.Total)
		cmd.Printf("    Successful: %d\n", st.Successful)
		cmd.Printf("    Failed:     %d\n", st.Failed)
		cmd.Printf("    Success:    %.2f%%\n", st.SuccessRate())
		cmd.Printf("    Avg time:   %.2f ms\n", st.AverageProcessingTime())
	}
	return nil
}
