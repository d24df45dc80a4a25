package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/nao1215/censustable"
	"github.com/nao1215/censustable/domain/model"
	"github.com/spf13/cobra"
	"github.com/yaoapp/kun/log"
)

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "List the tables of the workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := censustable.ReadIndex(a.cfg.WorkbookPath())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, table := range tables {
				fmt.Fprintf(w, "%s\t%s\t%s\n", color.GreenString(table.Number), table.Title, table.Type)
			}
			return w.Flush()
		},
	}
}

func newTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table <id>",
		Short: "Print the decoded records of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := a.readTable(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join(decoded.Header(), "\t"))
			for _, record := range decoded.Records() {
				fmt.Fprintln(w, strings.Join(record, "\t"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), decoded.Warnings())
			return nil
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories <id>",
		Short: "List the categories of a table and their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoded, err := a.readTable(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, category := range decoded.Categories() {
				fmt.Fprintln(out, color.GreenString(category.Name))
				for _, value := range category.Values {
					fmt.Fprintf(out, "  %s\n", value)
				}
			}
			return nil
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		selections  []string
		granularity string
		lad         string
		prefix      string
	)

	cmd := &cobra.Command{
		Use:   "query <id>",
		Short: "Look up a dataset of a table for every ward or local authority",
		Example: `  censustable query KS402EW --select "Tenure=Owned: Total" --select "Type of central heating in household=All" --prefix E090000
  censustable query KS101EW --select Sex=Males --granularity lad`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := parseSelection(selections)
			if err != nil {
				return err
			}
			g, err := censustable.ParseGranularity(granularity)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			builder := censustable.NewBuilder().
				AddWorkbook(a.cfg.WorkbookPath()).
				AddDataDir(a.cfg.DataDir).
				AddGeography(a.cfg.GeographyPath()).
				AddTables(args[0]).
				WithDecodeOptions(a.decodeOptions()...)
			validated, err := builder.Build(ctx)
			if err != nil {
				return err
			}
			store, err := validated.Open(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.Error("close store: %s", err.Error())
				}
			}()

			set, err := store.Measurements(ctx, censustable.MeasurementQuery{
				TableID:        args[0],
				Selection:      selection,
				Granularity:    g,
				LocalAuthority: lad,
				CodePrefix:     prefix,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s)\n", color.GreenString(set.TableID), set.Dataset, set.Column)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, row := range set.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.GeographyCode, row.Name, row.LocalAuthorityName, formatValue(row.Value))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "max %s over %d places\n", formatValue(set.Max), len(set.Rows))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&selections, "select", "s", nil, "Category value as name=value, once per category")
	flags.StringVar(&granularity, "granularity", "wards", "wards or local-authorities")
	flags.StringVar(&lad, "lad", "", "Limit wards to one local authority district code")
	flags.StringVar(&prefix, "prefix", "", "Keep places whose district code starts with this prefix")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var (
		format   string
		compress string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "dump <id>",
		Short: "Write a decoded table to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, ok := model.ParseOutputFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q", format)
			}
			compression, ok := model.ParseCompressionType(compress)
			if !ok {
				return fmt.Errorf("unknown compression %q", compress)
			}

			decoded, err := a.readTable(args[0])
			if err != nil {
				return err
			}

			options := model.NewDumpOptions().WithFormat(outputFormat).WithCompression(compression)
			path, err := censustable.DumpTable(decoded.Table(args[0]), out, options)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ %s", path))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "csv", "csv, tsv, ltsv, parquet or xlsx")
	flags.StringVarP(&compress, "compress", "c", "none", "none, gz, xz or zstd")
	flags.StringVarP(&out, "out", "o", ".", "Output directory")
	return cmd
}

func (a *app) readTable(tableID string) (*censustable.DecodedTable, error) {
	return censustable.ReadTable(a.cfg.WorkbookPath(), tableID, a.decodeOptions()...)
}

// parseSelection turns name=value pairs into a category selection. The value
// may itself contain "=".
func parseSelection(pairs []string) (map[string]string, error) {
	selection := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid selection %q, expected name=value", pair)
		}
		if _, dup := selection[name]; dup {
			return nil, fmt.Errorf("category %q selected twice", name)
		}
		selection[name] = strings.TrimSpace(value)
	}
	return selection, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
