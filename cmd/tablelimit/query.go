package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/manojoshi/tablelimit/adapter"
	"github.com/manojoshi/tablelimit/limit"
	"github.com/manojoshi/tablelimit/query"
	"github.com/manojoshi/tablelimit/repository"
	"github.com/manojoshi/tablelimit/scan"
)

type queryOpts struct {
	rows    string
	table   string
	body    string
	params  []string
	columns []string
	format  string
}

func newQueryCmd(root *rootOpts) *cobra.Command {
	opts := &queryOpts{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "run one table query over a row file",
		Example: `  tablelimit query --rows presidents.yaml --param presidents_f_party=whig --param presidents_mr_=5
  tablelimit query --rows presidents.yaml --json '{"filter":[{"key":"term","comparison":"START_WITH","value":["18"]}]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, root, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.rows, "rows", "", "YAML or JSON file holding a list of rows")
	flags.StringVar(&opts.table, "table", "", "table id, defaults to the row file name")
	flags.StringVar(&opts.body, "json", "", "JSON document, or @file to read it from a file")
	flags.StringArrayVar(&opts.params, "param", nil, "request parameter key=value, repeatable")
	flags.StringSliceVar(&opts.columns, "columns", nil, "columns to print, dotted paths allowed")
	flags.StringVar(&opts.format, "format", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("rows")
	return cmd
}

func runQuery(cmd *cobra.Command, root *rootOpts, opts *queryOpts) error {
	rows, err := loadRows(opts.rows)
	if err != nil {
		return err
	}
	id := opts.table
	if id == "" {
		id = tableID(opts.rows)
	}

	af, err := actionFactory(id, opts)
	if err != nil {
		return err
	}
	reg, err := root.cfg.Registry()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	l, err := limit.NewFactory(af, limit.WithMaxRows(root.cfg.MaxRows)).CreateLimit(ctx, len(rows))
	if err != nil {
		return err
	}
	res, err := repository.Search(ctx, root.cfg.Repository(reg), root.cfg.RequestContext(), rows, l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"id":         l.ID(),
			"filter":     l.FilterSet().String(),
			"page":       res.RowSelect.Page(),
			"totalPages": res.RowSelect.TotalPages(),
			"totalRows":  res.TotalRows,
			"rows":       res.Rows,
		})
	}

	columns := opts.columns
	if len(columns) == 0 {
		columns = columnsOf(res.Rows)
	}
	renderTable(out, columns, res)
	fmt.Fprintf(out, "%s\n", l)
	return nil
}

func actionFactory(id string, opts *queryOpts) (adapter.ActionFactory, error) {
	if opts.body != "" && len(opts.params) > 0 {
		return nil, errors.New("--json and --param are exclusive")
	}
	if opts.body != "" {
		body := []byte(opts.body)
		if path, ok := strings.CutPrefix(opts.body, "@"); ok {
			b, err := os.ReadFile(path) // #nosec G304
			if err != nil {
				return nil, errors.Wrap(err, "read json body")
			}
			body = b
		}
		return adapter.NewJSONFactory(id, body)
	}

	params := map[string][]string{}
	for _, p := range opts.params {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, errors.Errorf("--param %q is not key=value", p)
		}
		params[k] = append(params[k], v)
	}
	return adapter.NewParamsFactory(id, params), nil
}

func renderTable(w io.Writer, columns []string, res *repository.Result[any]) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	for _, row := range res.Rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = query.Stringify(scan.Resolve(row, c))
		}
		table.Append(cells)
	}
	table.SetFooter(footer(columns, res))
	table.SetAutoFormatHeaders(false)
	table.Render()
}

func footer(columns []string, res *repository.Result[any]) []string {
	f := make([]string, len(columns))
	if len(f) > 0 {
		f[len(f)-1] = fmt.Sprintf("page %d/%d, %d rows", res.RowSelect.Page(), res.RowSelect.TotalPages(), res.TotalRows)
	}
	return f
}
