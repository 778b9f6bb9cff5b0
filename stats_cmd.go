package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sweetmap/models"
	"sweetmap/stats"
)

var statsFile string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Inspect or edit local visited/favorite stats",
}

var statsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := stats.Load(cmd.Context(), stats.NewFileStorage(statsFile), logger)
		return printStats(cmd, st.Stats())
	},
}

var statsToggleCmd = &cobra.Command{
	Use:   "toggle <visited|favorites> <storeID>",
	Short: "Flip one store's membership in a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseStatKind(args[0])
		if err != nil {
			return err
		}
		st := stats.Load(cmd.Context(), stats.NewFileStorage(statsFile), logger)
		updated, err := st.Toggle(cmd.Context(), kind, args[1])
		if err != nil {
			return err
		}
		return printStats(cmd, updated)
	},
}

func defaultStatsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sweetmap-stats.json"
	}
	return filepath.Join(home, ".sweetmap", "stats.json")
}

func printStats(cmd *cobra.Command, s models.UserStats) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func init() {
	statsCmd.PersistentFlags().StringVarP(&statsFile, "file", "f", defaultStatsFile(), "stats file path")
	statsCmd.AddCommand(statsShowCmd, statsToggleCmd)
}
