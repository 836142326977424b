package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/trace"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <db-file>",
		Short: "Summarize a database written with --db.",
		Long: "`report` lists the tables of a recorded database with their row " +
			"counts. With --table, it prints the rows of one table as JSON lines.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer reader.Close()

			trace.MapTables(reader)

			table, _ := cmd.Flags().GetString("table")
			limit, _ := cmd.Flags().GetInt("limit")

			if table == "" {
				return listTables(cmd.Context(), reader, cmd.OutOrStdout())
			}

			return printRows(cmd.Context(), reader, table, limit, cmd.OutOrStdout())
		},
	}

	reportCmd.Flags().String("table", "", "Print the rows of this table.")
	reportCmd.Flags().Int("limit", 100, "Maximum number of rows, 0 for all.")

	return reportCmd
}

func listTables(ctx context.Context, reader datarecording.DataReader, out io.Writer) error {
	tables, err := reader.ListTables(ctx)
	if err != nil {
		return err
	}

	for _, t := range tables {
		n, err := reader.Count(ctx, t)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%-16s %d\n", t, n)
	}

	return nil
}

func printRows(
	ctx context.Context,
	reader datarecording.DataReader,
	table string,
	limit int,
	out io.Writer,
) error {
	rows, err := reader.Query(ctx, table, datarecording.QueryParams{
		Limit:   limit,
		OrderBy: "Seq",
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	return nil
}
