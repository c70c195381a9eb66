// Command navctl serves and inspects navcore route tables.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags are shared by every command.
type rootFlags struct {
	config   string
	envFiles []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "navctl",
		Short: "Serve and inspect navcore route tables",
		Long: `navctl runs a navcore server and inspects its route table.

The route table and server settings come from navcore.json or
navcore.toml, a file path, or an s3://bucket/key URI. NAVCORE_*
environment variables and .env files override file values.

Examples:
  navctl serve
  navctl serve --config ./site --addr :8080
  navctl resolve /
  navctl routes --config s3://my-bucket/navcore.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Config directory, file or s3://bucket/key (default: working directory)")
	rootCmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "Dotenv files to load (default: .env if present)")

	rootCmd.AddCommand(
		serveCmd(flags),
		resolveCmd(flags),
		routesCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printError prints err, using the detailed format for navigation errors.
func printError(w io.Writer, err error) {
	var ne *errors.NavError
	if stderrors.As(err, &ne) {
		fmt.Fprintln(w, ne.Format())
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
