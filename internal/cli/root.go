// Package cli defines the cobra command tree for hoom.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hoomlabs/hoom/internal/client"
)

var (
	flagFormat string
	flagConfig string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hoom",
		Short: "Browse and curate real-estate listings",
		Long: "hoom serves a dashboard for the listings and promoters kept in a hosted table store. " +
			"The other commands talk to a running server through its JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/hoom/config.yaml)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path for the sqlite backend")

	root.AddCommand(
		newServeCmd(),
		newListingsCmd(),
		newShowCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newPrimaryCmd(),
		newDropPhotoCmd(),
		newImportCmd(),
		newPromotersCmd(),
		newPromoterCmd(),
		newReloadCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// newAPIClient creates an HTTP client for the configured hoom server.
func newAPIClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.ServerURL), nil
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseID parses a positional listing or promoter id.
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, arg)
	}
	return id, nil
}
