package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cleanops/internal/domain/roster"
	"cleanops/internal/platform/spreadsheet"
)

func newParseCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a roster workbook and print what would be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseFile(args[0])
			if err != nil {
				return err
			}
			return printParse(cmd.OutOrStdout(), parsed, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed records as JSON")
	return cmd
}

func parseFile(path string) (roster.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return roster.ParseResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	grid, err := spreadsheet.Open(data, filepath.Base(path))
	if err != nil {
		return roster.ParseResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	return roster.Parse(grid), nil
}

func printParse(w io.Writer, parsed roster.ParseResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	}

	perTeam := map[string][2]int{}
	var order []string
	for _, emp := range parsed.Employees {
		if _, ok := perTeam[emp.Team]; !ok {
			order = append(order, emp.Team)
		}
		counts := perTeam[emp.Team]
		counts[0]++
		perTeam[emp.Team] = counts
	}
	for _, client := range parsed.Clients {
		counts := perTeam[client.Team]
		counts[1]++
		perTeam[client.Team] = counts
	}

	for _, team := range order {
		counts := perTeam[team]
		if _, err := fmt.Fprintf(w, "%-24s employees=%d clients=%d\n", team, counts[0], counts[1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total employees=%d clients=%d dropped_client_rows=%d\n",
		len(parsed.Employees), len(parsed.Clients), parsed.DroppedClientRows)
	return err
}
