// Package cli provides the tabcheck command-line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/schema"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// ErrNotConforming is returned by check when any table fails.
var ErrNotConforming = errors.New("data does not conform to its metadata")

// readFlags are the reader settings shared by every command.
type readFlags struct {
	delimiter   string
	quote       string
	headerLines int
	encoding    string
	maxRows     int
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", ",", `field delimiter (a character, "\t" or "tab")`)
	cmd.Flags().StringVar(&f.quote, "quote", `"`, "quote character")
	cmd.Flags().IntVar(&f.headerLines, "header-lines", 1, "lines before the first data row, header included")
	cmd.Flags().StringVar(&f.encoding, "encoding", "UTF-8", "character encoding of the data file")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", core.DefaultMaxRows, "row ceiling for sampled files")
}

func (f *readFlags) options() (core.ReadOptions, error) {
	delim, ok := schema.ParseDelimiter(f.delimiter)
	if !ok {
		return core.ReadOptions{}, fmt.Errorf("invalid --delimiter %q", f.delimiter)
	}
	quote, ok := schema.ParseDelimiter(f.quote)
	if !ok {
		return core.ReadOptions{}, fmt.Errorf("invalid --quote %q", f.quote)
	}
	if f.headerLines < 1 {
		return core.ReadOptions{}, fmt.Errorf("--header-lines must be at least 1, got %d", f.headerLines)
	}
	return core.ReadOptions{
		Delimiter:   delim,
		Quote:       quote,
		HeaderLines: f.headerLines,
		Encoding:    f.encoding,
		MaxRows:     f.maxRows,
	}, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		logLevel     string
		logFormat    string
		sentinelRule string
	)

	rootCmd := &cobra.Command{
		Use:   "tabcheck",
		Short: "Profile tabular data and check it against EML metadata",
		Long: `tabcheck infers EML attribute descriptions from delimited data files and
checks data files against the dataTable declarations of an EML document.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")
	rootCmd.PersistentFlags().StringVar(&sentinelRule, "sentinel-rule", "prefix", "numeric missing-code rule (prefix|exact)")

	catalog := func() (*core.Catalog, error) {
		rule, err := core.ParseSentinelRule(sentinelRule)
		if err != nil {
			return nil, err
		}
		return core.NewCatalog(core.WithSentinelRule(rule)), nil
	}

	rootCmd.AddCommand(newInferCmd(catalog))
	rootCmd.AddCommand(newMissingCmd(catalog))
	rootCmd.AddCommand(newCheckCmd(catalog))
	return rootCmd
}
