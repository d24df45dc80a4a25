package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/nao1215/censustable"
	"github.com/nao1215/censustable/internal/config"
	"github.com/spf13/cobra"
)

// app carries the global flags and the loaded configuration to every command.
type app struct {
	envFile   string
	dataDir   string
	workbook  string
	geography string
	strict    bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "censustable",
		Short: "Decode census Cell Numbered DC Tables",
		Long: `censustable decodes the worksheets of a census "Cell Numbered DC Tables"
workbook into flat tables and looks up their measurements in the bulk data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.boot(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			config.CloseLog()
		},
	}

	rootCmd.AddCommand(
		newIndexCmd(a),
		newTableCmd(a),
		newCategoriesCmd(a),
		newQueryCmd(a),
		newDumpCmd(a),
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.envFile, "env", "e", ".env", "Environment file")
	flags.StringVarP(&a.dataDir, "data", "d", "", "Data directory (CENSUS_DATA)")
	flags.StringVarP(&a.workbook, "workbook", "w", "", "Workbook file (CENSUS_WORKBOOK)")
	flags.StringVarP(&a.geography, "geography", "g", "", "Geography lookup file (CENSUS_GEOGRAPHY)")
	flags.BoolVar(&a.strict, "strict", false, "Fail when label rows overflow the row levels (CENSUS_STRICT_LEVELS)")
	return rootCmd
}

// boot loads the configuration, applies flag overrides and sets up logging.
func (a *app) boot(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(a.envFile)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.workbook != "" {
		cfg.Workbook = a.workbook
	}
	if a.geography != "" {
		cfg.Geography = a.geography
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictLevels = a.strict
	}

	config.SetupLog(cfg)
	a.cfg = cfg
	return nil
}

func (a *app) decodeOptions() []censustable.DecodeOption {
	opts := []censustable.DecodeOption{censustable.WithHeaderRow(a.cfg.HeaderRow)}
	if a.cfg.StrictLevels {
		opts = append(opts, censustable.WithOverflowPolicy(censustable.OverflowError))
	}
	return opts
}

func (a *app) openWorkbook() (*censustable.Workbook, error) {
	return censustable.OpenWorkbook(a.cfg.WorkbookPath())
}

func printWarnings(w io.Writer, warnings []censustable.Warning) {
	for _, warning := range warnings {
		fmt.Fprintln(w, color.YellowString("warning: %s", warning.String()))
	}
}
