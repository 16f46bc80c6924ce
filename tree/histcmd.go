/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tree

import (
	"fmt"

	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/stylesheet"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	const (
		histUse   string = "history"
		histShort string = "display past queries"
		histLong  string = "Display queries recorded by prior sessions, most recent first."
	)

	cmd := &cobra.Command{
		Use:     histUse,
		Short:   histShort,
		Long:    histLong,
		Aliases: []string{"past"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := buildClientAndStore(cmd.Flags())
			if err != nil {
				return err
			}
			if err := store.Load(); err != nil {
				return err
			}

			count, err := cmd.Flags().GetInt("count")
			if err != nil {
				return err
			}
			entries := store.Entries()
			clilog.Writer.Debugf("found %v prior searches", len(entries))
			if count > 0 && len(entries) > count {
				entries = entries[:count]
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "no recorded queries")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%v  %v\n",
					stylesheet.Hint.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
					e.Query)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().Int("count", 0, "the number of past searches to display.\n"+
		"If negative or 0, shows the entire history")
	return cmd
}
