package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cnx-populate",
	Short: "Extract collection metadata and archive it",
	Long: `cnx-populate reads a Connexions collection document (collection.xml),
extracts its metadata record, resolves the license against a registry and
writes the collection into a PostgreSQL archive.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Archive connection failed
  12 - User denied replacing an archived collection
  20 - Malformed collection document
  21 - Collection document has no license
  22 - License URL is not registered
  23 - Collection version is already archived`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the host flag of populate
	rootCmd.PersistentFlags().Bool("help", false, "Help for cnx-populate")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("env-file", "",
		"Load environment variables from this file before running\n"+
			"(default: .env in the working directory, when present)")
}

// loadEnvFile applies --env-file, or an optional .env in the working directory.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
