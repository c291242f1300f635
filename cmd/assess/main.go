// Command assess runs the demo page UI checks outside of go test.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/resolverqa/assessment/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "assess",
	Short: "UI acceptance checks for the resolver demo page",
	Long: `assess drives a real browser through the six checks of the resolver
demo page (login form, list group, dropdown, button states, delayed button
and table cell) and writes Allure results for every check.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var logLevelFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionOutputFlag string

func init() {
	versionCmd.Flags().StringVarP(&versionOutputFlag, "output", "o", "text", "Output format: text, yaml or json")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch versionOutputFlag {
	case "", "text":
		_, err := fmt.Fprintf(out, "assess %s\n", version.Full())
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(version.GetInfo()); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(version.GetInfo(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", versionOutputFlag)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
