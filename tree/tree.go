/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

/*
Package tree assembles the command tree.

The bare invocation launches the interactive search UI; subcommands cover
one-shot searches, history inspection, and the development server.
*/
package tree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ciscokidok/servicenow-agent/client"
	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/history"
	"github.com/Ciscokidok/servicenow-agent/querier"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	use   string = "snowcli"
	short string = "search ServiceNow tickets from the terminal"
	long  string = "snowcli is an interactive client for the ticket search backend." +
		" Run it bare for the interactive UI, or use the subcommands for scripted access."
)

const (
	flagServer      = "server"
	flagHistoryFile = "history-file"
	flagHistoryMax  = "history-max"
	flagLog         = "log"
	flagLogLevel    = "loglevel"
)

// Execute runs the tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initLogging(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, store, err := buildClientAndStore(cmd.Flags())
			if err != nil {
				return err
			}
			p := tea.NewProgram(querier.New(cli, store, client.DefaultMaxResults))
			if _, err := p.Run(); err != nil {
				clilog.Tee(clilog.CRITICAL, cmd.ErrOrStderr(), err.Error())
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	gfs := globalFlags()
	root.PersistentFlags().AddFlagSet(&gfs)

	root.AddCommand(newSearchCmd(), newHistoryCmd(), newDevCmd())
	return root
}

func globalFlags() pflag.FlagSet {
	var fs pflag.FlagSet
	fs.String(flagServer, client.DefaultBaseURL, "base URL of the search backend")
	fs.String(flagHistoryFile, "", "path to the query history file (defaults to the user config dir)")
	fs.Int(flagHistoryMax, 0, "maximum retained history entries.\nIf 0, history grows without bound")
	fs.String(flagLog, "", "session log path (defaults alongside the history file)")
	fs.String(flagLogLevel, "INFO", "minimum session log level (DEBUG, INFO, WARN, ERROR, CRITICAL)")
	return fs
}

func initLogging(fs *pflag.FlagSet) error {
	logPath, err := fs.GetString(flagLog)
	if err != nil {
		return err
	}
	if logPath == "" {
		hp, err := historyPath(fs)
		if err != nil {
			return err
		}
		logPath = filepath.Join(filepath.Dir(hp), "session.log")
	}
	lvl, err := fs.GetString(flagLogLevel)
	if err != nil {
		return err
	}
	if err := clilog.Init(logPath, lvl); err != nil {
		// a dead log file should not block the tool itself
		fmt.Fprintf(os.Stderr, "warning: session logging disabled: %v\n", err)
	}
	return nil
}

func historyPath(fs *pflag.FlagSet) (string, error) {
	p, err := fs.GetString(flagHistoryFile)
	if err != nil {
		return "", err
	}
	if p != "" {
		return p, nil
	}
	return history.DefaultPath()
}

// buildClientAndStore resolves the global flags shared by the interactive and
// one-shot search paths.
func buildClientAndStore(fs *pflag.FlagSet) (*client.Client, *history.Store, error) {
	server, err := fs.GetString(flagServer)
	if err != nil {
		return nil, nil, err
	}
	hp, err := historyPath(fs)
	if err != nil {
		return nil, nil, err
	}
	maxEntries, err := fs.GetInt(flagHistoryMax)
	if err != nil {
		return nil, nil, err
	}
	return client.New(server), history.NewStore(hp, maxEntries), nil
}
