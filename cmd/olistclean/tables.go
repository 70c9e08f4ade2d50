package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/olistclean/internal/core"
	"github.com/JonMunkholm/olistclean/internal/schema"
)

func newTablesCmd() *cobra.Command {
	var (
		ddl        bool
		schemaName string
	)

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the cleaning tables by phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ddl {
				printDDL(cmd.OutOrStdout(), schemaName)
				return nil
			}
			printTables(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&ddl, "ddl", false, "print the PostgreSQL DDL of the output tables instead")
	cmd.Flags().StringVar(&schemaName, "schema", schema.DefaultSchema, "schema used in --ddl output")
	return cmd
}

// printDDL writes the statements the PostgreSQL sink would run, for
// operators who provision tables ahead of the first run.
func printDDL(w io.Writer, schemaName string) {
	for _, stmt := range schema.CreateAll(schemaName, core.All()) {
		fmt.Fprintf(w, "%s;\n\n", stmt)
	}
}

func printTables(w io.Writer) {
	for _, phase := range core.Phases {
		defs := core.ByPhase(phase)
		if len(defs) == 0 {
			continue
		}
		fmt.Fprintf(w, "[PHASE %d] %s\n", phase, phase)
		for _, def := range defs {
			info := def.Info
			fmt.Fprintf(w, "  %-16s %s.csv -> %s", info.Key, info.Source, info.Output)
			if len(info.References) > 0 {
				fmt.Fprintf(w, "  (filtered by %s)", joinKinds(info.References))
			}
			fmt.Fprintln(w)
		}
	}
}

func joinKinds(kinds []core.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
