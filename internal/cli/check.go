package cli

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/spf13/cobra"
)

func newCheckCmd(catalog func() (*core.Catalog, error)) *cobra.Command {
	var (
		rf        readFlags
		maxErrors int
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "check <eml> <dir>",
		Short: "Check every dataTable of an EML document against files in a directory",
		Long: `check reads each dataTable declared in the EML document, opens its objectName
in the directory and prints the conformance report as JSON. Layout flags
override the declared layout only when given.`,
		Example: `  tabcheck check eml.xml ./data
  tabcheck check --max-errors 10 eml.xml ./data`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := schema.ParseFile(args[0])
			if err != nil {
				return err
			}
			tables, err := schema.LoadTables(root)
			if err != nil {
				return err
			}
			cat, err := catalog()
			if err != nil {
				return err
			}
			override, err := rf.options()
			if err != nil {
				return err
			}

			checker := core.NewChecker(cat, core.CheckOptions{MaxErrorsPerColumn: maxErrors, Workers: workers})
			report := &core.DocumentReport{DocumentID: filepath.Base(args[0]), CheckedAt: time.Now().UTC()}
			for _, t := range tables {
				t = applyOverrides(cmd, t, override)
				// objectName comes from the document; never leave dir.
				path := filepath.Join(args[1], filepath.Base(t.ObjectName))

				res, err := checker.CheckTableFile(cmd.Context(), t, path, override.MaxRows)
				if err != nil {
					return err
				}
				log := logging.WithFields(cmd.Context(), "table", t.Name, "file", t.ObjectName)
				if res.FileError != "" {
					log.Warn("data file unreadable", "error", res.FileError)
				} else if res.Truncated {
					log.Warn("sample truncated at row ceiling", "max_rows", override.MaxRows)
				}
				log.Info("table checked", "ok", res.OK(), "errors", res.ErrorCount(), "duration", res.Duration)
				report.Tables = append(report.Tables, res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report.Transport()); err != nil {
				return err
			}
			if !report.OK() {
				return ErrNotConforming
			}
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&maxErrors, "max-errors", core.DefaultMaxErrorsPerColumn, "errors recorded per column before its scan stops")
	cmd.Flags().IntVar(&workers, "workers", 4, "columns checked in parallel (0 for one per column)")
	return cmd
}

// applyOverrides replaces declared layout settings with flags the user set.
func applyOverrides(cmd *cobra.Command, t schema.Table, o core.ReadOptions) schema.Table {
	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		t.Delimiter = o.Delimiter
	}
	if flags.Changed("quote") {
		t.Quote = o.Quote
	}
	if flags.Changed("header-lines") {
		t.HeaderLines = o.HeaderLines
	}
	if flags.Changed("encoding") {
		t.Encoding = o.Encoding
	}
	return t
}
