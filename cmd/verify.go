package cmd

import (
	"fmt"

	"github.com/encodeous/rtsim/perf"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	verifyDump  bool
	verifyStats bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validates a topology file and builds every system in it",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, closer, err := openEngine()
		if err != nil {
			return err
		}
		defer closer()
		if err := e.BuildAll(cmd.Context()); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		t := e.Topology
		fmt.Fprintf(out, "Topology is valid: %d nodes, %d links, %d systems\n", len(t.Nodes), len(t.Links), len(t.Systems))
		for _, name := range t.SystemNames() {
			as := t.Systems[name]
			line := fmt.Sprintf("  %s: %s, %d nodes, %d links", name, as.Protocol, len(as.Nodes), len(as.Links))
			if as.HasAreas() {
				line += fmt.Sprintf(", areas %v", as.Areas.Names())
			}
			fmt.Fprintln(out, line)
		}
		if verifyStats {
			if err := perf.WriteStats(out); err != nil {
				return err
			}
		}
		if verifyDump {
			cfgYaml, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(cfgYaml))
		}
		return nil
	},
	GroupID: "config",
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyDump, "dump", false, "print the parsed topology")
	verifyCmd.Flags().BoolVar(&verifyStats, "stats", false, "print build metrics")
}
