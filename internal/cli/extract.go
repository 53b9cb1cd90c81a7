package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cnxpopulate/internal/collection"
	"github.com/vvka-141/cnxpopulate/internal/files/filesystem"
	"github.com/vvka-141/cnxpopulate/internal/licenses"
	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/internal/tui"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

var extractCmd = &cobra.Command{
	Use:   "extract <collection.xml|dir>",
	Short: "Print the metadata record of a collection",
	Long: `Extract parses a collection document and prints its metadata record.

Arguments:
  collection.xml|dir    A collection document, or a directory containing
                        collection.xml together with the resources it uses

Licenses are resolved from --licenses, then the licenses entry of
cnxpopulate.yaml, then the built-in license list.

Examples:
  # Human-readable summary
  cnx-populate extract ./col10154

  # Machine-readable record
  cnx-populate extract ./col10154/collection.xml --format json`,
	Args: requireSourcePath,
	RunE: runExtract,
}

type extractFlagValues struct {
	sourceFlagValues
	format string
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	extractFlags.register(extractCmd,
		"JSON or YAML license list (default: built-in list)")
	extractCmd.Flags().StringVar(&extractFlags.format, "format", "text",
		"Output format: text|json|yaml")
	_ = extractCmd.RegisterFlagCompletionFunc("format",
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
		})
}

func runExtract(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]
	verbose := getVerboseFlag(cmd)

	if err := validateFormat(extractFlags.format); err != nil {
		return err
	}

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return err
	}

	var source cnx.LicenseSource = licenses.DefaultSource()
	if path := extractFlags.licensesPath(projectCfg); path != "" {
		source = licenses.NewFileSource(path)
	}

	opts := collection.DefaultOptions()
	opts.Registry = licenses.NewRegistry(source)
	opts.RetainSourceBuffer = extractFlags.retainSource(projectCfg)
	opts.AllowUnknownLicense = extractFlags.allowUnknown(projectCfg)
	opts.Logger = logging.NewConsoleLogger(verbose)

	coll, err := collection.Load(contextOrBackground(cmd), filesystem.NewOSFileSystem(), sourcePath, opts)
	if err != nil {
		return err
	}
	return writeCollection(cmd.OutOrStdout(), extractFlags.format, coll)
}

func validateFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("invalid argument %q for --format (expected text, json or yaml)", format)
}

// writeCollection renders coll in format. Structured formats carry the
// metadata record only.
func writeCollection(w io.Writer, format string, coll *collection.Collection) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(coll.Metadata, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(coll.Metadata); err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, tui.RenderMetadata(coll.Metadata, coll.Files))
		return err
	}
}

// contextOrBackground guards commands invoked directly in tests.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
