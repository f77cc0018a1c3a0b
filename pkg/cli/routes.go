package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/navigation"
)

func newRoutesCmd() *cobra.Command {
	var (
		file   string
		slug   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the navigation table with its declared access",
		Long:  "Prints every page entry in match order. With --file, loads and validates another table instead of the built-in one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := navigation.Default()
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				if table, err = navigation.Load(data); err != nil {
					return err
				}
			}

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			case "table":
				return printRoutes(cmd.OutOrStdout(), table, slug)
			default:
				return fmt.Errorf("unknown output format %q (table, json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "navigation table YAML to load instead of the built-in one")
	cmd.Flags().StringVar(&slug, "slug", navigation.Placeholder, "server slug to substitute into hrefs")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	return cmd
}

func printRoutes(out io.Writer, table *navigation.Table, slug string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tLABEL\tPATH\tROLES\tPERMISSIONS\tMODE")
	for _, g := range table.Groups {
		for _, l := range g.Links {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				g.Name, l.Label, navigation.ReplaceSlug(l.Href, slug),
				joinOrDash(l.Roles), joinOrDash(l.Permissions), modeOrDash(l))
		}
	}
	return tw.Flush()
}

func joinOrDash[T ~string](items []T) string {
	if len(items) == 0 {
		return "-"
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, ",")
}

func modeOrDash(l navigation.Link) string {
	if len(l.Permissions) < 2 {
		return "-"
	}
	if l.Mode == "" {
		return "OR"
	}
	return string(l.Mode)
}
