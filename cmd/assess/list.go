package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/resolverqa/assessment/internal/assessment"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available checks",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listOutputFlag string

func init() {
	listCmd.Flags().StringVarP(&listOutputFlag, "output", "o", "text", "Output format: text, yaml or json")
}

type checkEntry struct {
	Number      int    `json:"number" yaml:"number"`
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

func runList(cmd *cobra.Command, args []string) error {
	checks := assessment.Catalog()
	entries := make([]checkEntry, len(checks))
	for i, c := range checks {
		entries[i] = checkEntry{Number: c.Number, ID: c.ID, Title: c.Title, Description: c.Description}
	}
	return writeEntries(cmd.OutOrStdout(), listOutputFlag, entries)
}

func writeEntries(out io.Writer, format string, entries []checkEntry) error {
	switch format {
	case "", "text":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tID\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", e.Number, e.ID, e.Title)
		}
		return w.Flush()
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
	}
}
