/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tree

import (
	"strings"

	"github.com/Ciscokidok/servicenow-agent/client"
	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/querier"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	const (
		searchUse   string = "search <query>..."
		searchShort string = "run a single search and print the results"
		searchLong  string = "Submit one query non-interactively. All arguments are joined" +
			" into the query string; the empty query is permitted."
	)

	cmd := &cobra.Command{
		Use:   searchUse,
		Short: searchShort,
		Long:  searchLong,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, store, err := buildClientAndStore(cmd.Flags())
			if err != nil {
				return err
			}
			if err := store.Load(); err != nil {
				clilog.Writer.Warnf("failed to load history: %v", err)
			}

			maxResults, err := cmd.Flags().GetInt("max-results")
			if err != nil {
				return err
			}
			noHistory, err := cmd.Flags().GetBool("no-history")
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			err = querier.RunOnce(cmd.Context(), cli, store, query, maxResults,
				!noHistory, cmd.OutOrStdout())
			if err != nil {
				clilog.Tee(clilog.ERROR, cmd.ErrOrStderr(), err.Error())
			}
			return err
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("max-results", client.DefaultMaxResults, "maximum records the backend may return")
	cmd.Flags().Bool("no-history", false, "do not record this query in the history log")
	return cmd
}
