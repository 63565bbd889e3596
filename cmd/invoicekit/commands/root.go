// Package commands implements the CLI commands for invoicekit.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/invoicekit/internal/logger"
)

const rootLong = `Invoicekit cleans and reads saved order and invoice pages.

The clean command strips scripts and comments (and optionally more) from an
HTML file and pretty-prints the rest. The parse command extracts the order
summary, items, payment method and shipping address as JSON or YAML.

Examples:
  # Clean a saved invoice page
  invoicekit clean invoice.html

  # Strip everything noisy and print the body text only
  invoicekit clean invoice.html --preset strict --format text

  # Extract order details from several pages as JSON lines
  invoicekit parse orders/*.html --format jsonl`

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:          "invoicekit",
		Short:        "Clean and parse saved invoice pages",
		Long:         rootLong,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.invoicekit.yaml)")
	flags.String("env-file", "", "load INVOICEKIT_* variables from a dotenv file")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.Bool("log-json", false, "write logs as JSON")

	_ = v.BindPFlag("debug", flags.Lookup("debug"))
	_ = v.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = v.BindPFlag("log_json", flags.Lookup("log-json"))

	rootCmd.AddCommand(
		newCleanCmd(v),
		newParseCmd(v),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	// Variables already set in the environment win over the file.
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".invoicekit")
		v.SetConfigType("yaml")
	}

	// INVOICEKIT_CLEAN_PRESET overrides clean.preset, and so on.
	v.SetEnvPrefix("INVOICEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	logger.Init(logger.Options{
		Debug:  v.GetBool("debug"),
		Quiet:  v.GetBool("quiet"),
		JSON:   v.GetBool("log_json"),
		Output: cmd.ErrOrStderr(),
	})
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	return nil
}

// writeOutput calls write with stdout, or with the file at path when set.
// The file is only created once the caller has something to write.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
