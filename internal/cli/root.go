package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/apitester/internal/config"
	"github.com/wesleyorama2/apitester/internal/output"
)

// RootCmd represents the base command. The tool has no subcommands.
var RootCmd = NewRootCmd()

// NewRootCmd builds the api-tester command.
//
// Flag parsing is left to config.Resolve: the options are single-dash
// camelCase words ("-totalCalls 50") and unknown tokens must be skipped
// rather than rejected.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api-tester [URL] [arguments]",
		Short: "Fire a fixed number of GET requests at a URL from concurrent workers",
		Long: `api-tester sends a fixed number of HTTP GET requests to one URL,
spread over a fixed pool of concurrent workers, logs every call and prints
the total time, the average response time and the request rate.`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := output.NewPrinter(cmd.OutOrStdout())

			res, err := config.Resolve(args)
			if err != nil {
				return err
			}

			switch res.Action {
			case config.ActionHelp:
				printer.Help()
				return nil
			case config.ActionUsageError:
				printer.Message(res.Message)
				printer.Help()
				return nil
			}

			runLoad(cmd.Context(), res.Config, printer)
			return nil
		},
	}
}

// Execute runs the root command and reports a failure on stderr.
// This is called by main.main().
func Execute() error {
	return execute(RootCmd, os.Args[1:])
}

func execute(cmd *cobra.Command, args []string) error {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
