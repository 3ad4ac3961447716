// Package sqlcmder provides the sql command that turns questions into SQL.
package sqlcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

const sqlLongDesc string = `Translate a question into SQL.

The workspace generates a statement for the question. With --execute the
statement is also run on the server and the rows are printed as a table.

Examples:
  ragdesk sql "how many orders shipped last week"
  ragdesk sql --execute "top 5 customers by revenue"`

const sqlShortDesc string = "Translate a question into SQL"

type sqlCommander struct {
	execute bool
}

func NewSQLCmd() *cobra.Command {
	cmder := &sqlCommander{}

	cmd := &cobra.Command{
		Use:   "sql <question>",
		Short: sqlShortDesc,
		Long:  sqlLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVarP(&cmder.execute, "execute", "x", false, "Run the statement and print its rows")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *sqlCommander) run(cmd *cobra.Command, question string) error {
	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	result, err := s.Service.GenerateSQL(ctx, workspace.SQLRequest{
		Question: question,
		Execute:  c.execute,
	})
	if err != nil {
		return fmt.Errorf("generating sql: %w", err)
	}

	w := cmd.OutOrStdout()
	if s.RendersMarkdown(w) {
		rendered, _ := cliui.RenderMarkdown("```sql\n"+result.SQL+"\n```", cliui.Width(w))
		fmt.Fprint(w, rendered)
	} else {
		fmt.Fprintln(w, result.SQL)
	}

	if !c.execute {
		return nil
	}

	if len(result.Columns) == 0 {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("Statement returned no columns."))
		return nil
	}

	fmt.Fprintln(w, cliui.Table(result.Columns, resultRows(result)))
	fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d row(s)", len(result.Rows))))

	return nil
}

func resultRows(result *workspace.SQLResult) [][]string {
	rows := make([][]string, 0, len(result.Rows))
	for _, r := range result.Rows {
		row := make([]string, len(result.Columns))
		for i := range row {
			if i >= len(r) || r[i] == nil {
				row[i] = "NULL"
				continue
			}
			row[i] = fmt.Sprint(r[i])
		}
		rows = append(rows, row)
	}
	return rows
}
