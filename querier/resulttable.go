/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package querier

import (
	"time"

	"github.com/Ciscokidok/servicenow-agent/client/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Unassigned is displayed when a ticket has no resolvable assignee.
const Unassigned = "Unassigned"

const (
	colNumber      = "number"
	colDescription = "description"
	colState       = "state"
	colOpened      = "opened"
	colAssigned    = "assigned"
)

// openedAtWire is the timestamp layout the ServiceNow table API emits.
const openedAtWire = "2006-01-02 15:04:05"

var countPrinter = message.NewPrinter(language.English)

// ResultColumns returns the display columns for a result table.
func ResultColumns() []table.Column {
	return []table.Column{
		table.NewColumn(colNumber, "Number", 12),
		table.NewFlexColumn(colDescription, "Short Description", 3),
		table.NewColumn(colState, "State", 10),
		table.NewColumn(colOpened, "Opened", 20),
		table.NewFlexColumn(colAssigned, "Assigned To", 1),
	}
}

// BuildRows converts a result set into display rows. Pure: no state, no side
// effects. Ticket numbers act as the row key; a duplicate number replaces the
// earlier row (last-write-wins).
func BuildRows(tickets []types.Ticket) []table.Row {
	rows := make([]table.Row, 0, len(tickets))
	seen := make(map[string]int, len(tickets))
	for _, t := range tickets {
		row := table.NewRow(table.RowData{
			colNumber:      t.Number,
			colDescription: t.ShortDescription,
			colState:       t.State,
			colOpened:      FormatOpened(t.OpenedAt),
			colAssigned:    AssigneeName(t),
		})
		if i, dup := seen[t.Number]; dup {
			rows[i] = row
			continue
		}
		seen[t.Number] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

// NewResultTable builds a ready-to-render table for the given result set.
// width <= 0 leaves the table at its natural column widths.
func NewResultTable(tickets []types.Ticket, width int) table.Model {
	t := table.New(ResultColumns()).
		WithRows(BuildRows(tickets)).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left))
	if width > 0 {
		t = t.WithTargetWidth(width)
	}
	return t
}

// CountLine renders the "N records found" banner above the table.
func CountLine(n int) string {
	if n == 1 {
		return countPrinter.Sprintf("%d record found", n)
	}
	return countPrinter.Sprintf("%d records found", n)
}

// FormatOpened renders an opened_at wire timestamp in the local timezone.
// Absent timestamps render as the empty string; unparseable ones pass through
// verbatim rather than hiding data.
func FormatOpened(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{openedAtWire, time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Local().Format("Jan 2, 2006 3:04 PM")
		}
	}
	return raw
}

// AssigneeName resolves a ticket's assignee display name, falling back to
// Unassigned when the reference is absent or empty.
func AssigneeName(t types.Ticket) string {
	if t.AssignedTo == nil || t.AssignedTo.DisplayValue == "" {
		return Unassigned
	}
	return t.AssignedTo.DisplayValue
}
