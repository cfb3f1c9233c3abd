package cmd

import (
	"log/slog"
	"os"

	"github.com/encodeous/rtsim/perf"
	"github.com/encodeous/rtsim/state"
	"github.com/spf13/cobra"
)

var (
	topologyPath = state.DefaultTopologyPath
	verbose      = false
	logPath      = ""
	debugAddr    = ""
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rtsim",
	Short: "Routing and topology simulator",
	Long: `rtsim computes routing tables and spanning trees for a modelled network.
Each autonomous system runs one protocol (RIP, OSPF, IS-IS or STP) over a subset of the topology.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugAddr != "" {
			go func() {
				slog.Error("debug server stopped", "addr", debugAddr, "error", perf.Serve(debugAddr))
			}()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "build",
		Title: "Computation Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "config",
		Title: "Topology Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", topologyPath, "topology description (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", logPath, "also write logs to this file")
	rootCmd.PersistentFlags().StringVar(&debugAddr, "debug-addr", debugAddr, "serve /debug/metrics and /debug/vars on this address")
}
