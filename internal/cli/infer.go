package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/spf13/cobra"
)

func newInferCmd(catalog func() (*core.Catalog, error)) *cobra.Command {
	var rf readFlags

	cmd := &cobra.Command{
		Use:   "infer <file>",
		Short: "Print an EML dataTable fragment describing a data file",
		Example: `  tabcheck infer counts.csv
  tabcheck infer --delimiter tab --header-lines 2 counts.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			opts, err := rf.options()
			if err != nil {
				return err
			}
			cat, err := catalog()
			if err != nil {
				return err
			}

			profile, err := core.NewInferencer(cat).ProfileFile(path, opts)
			if err != nil {
				return err
			}
			log := logging.WithFields(cmd.Context(), "file", path)
			if profile.Truncated {
				log.Warn("sample truncated at row ceiling", "max_rows", opts.MaxRows)
			}
			for _, col := range profile.Columns {
				log.Debug("column inferred", "column", col.Name, "type", col.Verdict.Type, "missing_code", col.MissingCode)
			}

			var size int64
			if info, err := os.Stat(path); err == nil {
				size = info.Size()
			}
			base := filepath.Base(path)
			out, err := core.WriteXML(core.BuildDataTable(profile, core.DataTableMeta{
				EntityName:  strings.TrimSuffix(base, filepath.Ext(base)),
				ObjectName:  base,
				Size:        size,
				Delimiter:   opts.Delimiter,
				Quote:       opts.Quote,
				HeaderLines: opts.HeaderLines,
			}))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	rf.register(cmd)
	return cmd
}

func newMissingCmd(catalog func() (*core.Catalog, error)) *cobra.Command {
	var rf readFlags

	cmd := &cobra.Command{
		Use:   "missing <file> <column>",
		Short: "Guess the missing-value code of a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rf.options()
			if err != nil {
				return err
			}
			cat, err := catalog()
			if err != nil {
				return err
			}
			code, ok, err := core.NewInferencer(cat).DetectMissingCodeFile(args[0], opts, args[1])
			if err != nil {
				return err
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no missing-value code found")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}
	rf.register(cmd)
	return cmd
}
