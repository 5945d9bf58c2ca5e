// patchctl is the operator CLI for the patch panel: validate policy files,
// dry-run routing decisions against a synthetic context snapshot, and report
// routing statistics from an exported record dump.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/unamentis/patchpanel/capability"
	"github.com/unamentis/patchpanel/endpoint"
	"github.com/unamentis/patchpanel/routing"
)

var (
	tablePath   string
	catalogPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "patchctl",
		Short:         "Inspect and dry-run the adaptive task router's policy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&tablePath, "table", "routing_table.yaml", "routing table YAML file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "endpoints.yaml", "endpoint catalog YAML file")

	rootCmd.AddCommand(validateCmd(), resolveCmd(), statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the routing table and endpoint catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, table, err := loadPolicy()
			if err != nil {
				return err
			}
			if missing := table.CheckEndpoints(registry); len(missing) > 0 {
				for _, id := range missing {
					fmt.Fprintf(os.Stderr, "warning: table references unknown endpoint %q\n", id)
				}
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	var snapshotPath string
	var taskType string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Dry-run a routing decision for a task type against a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, table, err := loadPolicy()
			if err != nil {
				return err
			}

			var snap routing.Snapshot
			if snapshotPath != "" {
				data, err := os.ReadFile(snapshotPath)
				if err != nil {
					return fmt.Errorf("read snapshot: %w", err)
				}
				if err := yaml.Unmarshal(data, &snap); err != nil {
					return fmt.Errorf("parse snapshot: %w", err)
				}
			}

			tt := capability.TaskType(taskType)
			if !capability.Known(tt) {
				fmt.Fprintf(os.Stderr, "warning: unknown task type %q, requirements default to frontier\n", taskType)
			}

			logger, _ := zap.NewDevelopment()
			router := routing.NewRouter(routing.NewTableStore(table, logger), registry, logger)
			decision := router.Resolve(tt, snap)
			return printJSON(decision)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "context snapshot YAML file (optional)")
	cmd.Flags().StringVar(&taskType, "task", string(capability.TaskTutoringResponse), "task type to resolve")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <records.json>",
		Short: "Compute routing statistics from an exported record dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read records: %w", err)
			}
			var records []routing.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse records: %w", err)
			}
			return printJSON(routing.ComputeStats(records))
		},
	}
}

func loadPolicy() (*endpoint.Registry, *routing.Table, error) {
	catalog, err := endpoint.LoadCatalog(catalogPath)
	if err != nil {
		return nil, nil, err
	}
	registry := endpoint.NewRegistry(endpoint.DefaultRegistryConfig(), zap.NewNop())
	if err := catalog.Apply(registry); err != nil {
		return nil, nil, err
	}
	table, err := routing.LoadTable(tablePath)
	if err != nil {
		return nil, nil, err
	}
	return registry, table, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
