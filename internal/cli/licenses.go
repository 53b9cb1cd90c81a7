package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vvka-141/cnxpopulate/internal/db"
	"github.com/vvka-141/cnxpopulate/internal/licenses"
	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/internal/services"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

var licensesCmd = &cobra.Command{
	Use:   "licenses [file]",
	Short: "List the licenses of a license file",
	Long: `Licenses lists the licenses of a JSON or YAML license file.
Without a file the built-in license list is shown.

Examples:
  cnx-populate licenses
  cnx-populate licenses ./licenses.yaml --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLicenses,
}

var licensesImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load a license file into the archive",
	Long: `Import upserts every license of a JSON or YAML license file into the
licenses table of the archive, creating the archive tables when missing.
Without a file the built-in license list is imported.

Examples:
  cnx-populate licenses import -h localhost -d repository
  cnx-populate licenses import ./licenses.yaml --connection "$ARCHIVE_URL"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLicensesImport,
}

var licensesFlags struct {
	json bool
}

var licensesImportFlags connFlagValues

func init() {
	rootCmd.AddCommand(licensesCmd)
	licensesCmd.AddCommand(licensesImportCmd)

	licensesCmd.Flags().BoolVar(&licensesFlags.json, "json", false, "Print the licenses as JSON")
	licensesImportFlags.register(licensesImportCmd)
}

func licenseSourceFor(args []string) *licenses.FileSource {
	if len(args) == 0 {
		return licenses.DefaultSource()
	}
	return licenses.NewFileSource(args[0])
}

func runLicenses(cmd *cobra.Command, args []string) error {
	list, err := licenseSourceFor(args).Licenses(contextOrBackground(cmd))
	if err != nil {
		return err
	}
	return writeLicenses(cmd.OutOrStdout(), list, licensesFlags.json)
}

func writeLicenses(w io.Writer, list []cnx.License, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode licenses: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tVERSION\tURL")
	for _, l := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.ID, l.Code, l.Version, l.URL)
	}
	return tw.Flush()
}

func runLicensesImport(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	connConfig, err := licensesImportFlags.resolve(nil)
	if err != nil {
		return err
	}
	if connConfig.Database == "" {
		return fmt.Errorf("archive database is required: use -d, PGDATABASE or a connection string: %w", cnx.ErrInvalidConfig)
	}
	connConfig.AppName = db.DefaultAppName
	if verbose {
		logConnectionVerbose(connConfig)
	}

	logger := logging.NewConsoleLogger(verbose)
	importer := services.NewLicenseImportService(
		func(c *cnx.ConnectionConfig) (cnx.Connector, error) {
			return db.NewConnector(c, db.WithLogger(logger))
		},
		logger,
	)

	source := licenseSourceFor(args)
	logger.Verbose("Importing licenses from %s", source.Path())
	if _, err := importer.Import(contextOrBackground(cmd), connConfig, source); err != nil {
		return fmt.Errorf("license import failed: %w", err)
	}
	return nil
}
