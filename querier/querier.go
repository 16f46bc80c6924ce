/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

/*
Package querier drives the query lifecycle: it issues searches against the
backend, tracks in-flight state, records successful queries to the history
store, and renders results.

The interactive entry point is Model, a bubbletea model. Each submission is
tagged with a monotonic sequence number; a response carrying a stale sequence
is discarded so an earlier request's late reply can never overwrite a newer
result.
*/
package querier

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Ciscokidok/servicenow-agent/client"
	"github.com/Ciscokidok/servicenow-agent/client/types"
	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/history"
	"github.com/Ciscokidok/servicenow-agent/stylesheet"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/evertras/bubble-table/table"
)

// State is the lifecycle state of the most recent submission.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateFailed
)

type mode uint

const (
	prompting mode = iota // accepting queries
	quitting              // done
)

const defaultWidth = 80 // wrap width used before the initial WindowSizeMsg arrives

// searchDoneMsg carries one submission's outcome back into the update loop.
type searchDoneMsg struct {
	seq   uint64
	query string
	resp  types.SearchResponse
	err   error
}

// Model is the interactive query controller. Construct with New.
type Model struct {
	mode  mode
	width int

	ti   textinput.Model
	spin spinner.Model

	cli        *client.Client
	store      *history.Store
	maxResults int

	state  State
	seq    uint64 // latest issued submission
	result types.SearchResponse
	errMsg string
	tbl    table.Model

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a ready-to-run Model. The history store is loaded here so prior
// sessions' queries are available from the first frame; a load failure is
// logged and treated as an empty history.
func New(cli *client.Client, store *history.Store, maxResults int) *Model {
	if maxResults <= 0 {
		maxResults = client.DefaultMaxResults
	}
	if err := store.Load(); err != nil {
		clilog.Writer.Warnf("failed to load history: %v", err)
	}

	ti := stylesheet.NewTI("search incidents, problems, or changes")
	ti.Focus()

	ctx, cancel := context.WithCancel(context.Background())
	return &Model{
		mode:       prompting,
		width:      defaultWidth,
		ti:         ti,
		spin:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		cli:        cli,
		store:      store,
		maxResults: maxResults,
		state:      StateIdle,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// State returns the current lifecycle state.
func (m *Model) State() State { return m.state }

// Err returns the message shown for the last failed submission.
func (m *Model) Err() string { return m.errMsg }

// ResultCount returns the record count of the last successful submission.
func (m *Model) ResultCount() int { return len(m.result.Data) }

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == quitting {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.mode = quitting
			m.cancel()
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit(m.ti.Value())
		}
	case searchDoneMsg:
		m.finish(msg)
		return m, nil
	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.state == StateSuccess {
			m.tbl = m.tbl.WithTargetWidth(msg.Width)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

// submit transitions to Loading and launches the search. The empty query is a
// valid submission; the backend decides what to make of it. Overlapping
// submissions each get a fresh sequence number and the newest wins.
func (m *Model) submit(query string) tea.Cmd {
	m.errMsg = ""
	m.state = StateLoading
	m.seq++

	var (
		seq = m.seq
		ctx = m.ctx
		cli = m.cli
		max = m.maxResults
	)
	clilog.Writer.Infof("submitting search %q (seq %d)", query, seq)
	search := func() tea.Msg {
		resp, err := cli.Search(ctx, query, &types.SearchOptions{MaxResults: max})
		return searchDoneMsg{seq: seq, query: query, resp: resp, err: err}
	}
	return tea.Batch(m.spin.Tick, search)
}

// finish applies one submission's outcome. Loading is left on every path for
// the current sequence; stale sequences mutate nothing.
func (m *Model) finish(msg searchDoneMsg) {
	if msg.seq != m.seq {
		clilog.Writer.Debugf("dropping stale response for search %q (seq %d, latest %d)",
			msg.query, msg.seq, m.seq)
		return
	}
	if msg.err != nil {
		m.state = StateFailed
		m.errMsg = msg.err.Error()
		clilog.Writer.Errorf("search %q failed: %v", msg.query, msg.err)
		return
	}
	// record before presenting; a failed write must not hide the results
	if err := m.store.Append(history.New(msg.query)); err != nil {
		clilog.Writer.Errorf("failed to persist history: %v", err)
	}
	m.result = msg.resp
	m.tbl = NewResultTable(msg.resp.Data, m.width)
	m.state = StateSuccess
	clilog.Writer.Infof("search %q returned %v records", msg.query, len(msg.resp.Data))
}

func (m *Model) View() string {
	if m.mode == quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(stylesheet.Header.Render("ServiceNow Search") + "\n")
	sb.WriteString(m.ti.View() + "\n")
	switch m.state {
	case StateLoading:
		sb.WriteString(m.spin.View() + " searching...\n")
	case StateFailed:
		sb.WriteString(stylesheet.ErrText.Render(m.errMsg) + "\n")
	case StateSuccess:
		sb.WriteString(stylesheet.Count.Render(CountLine(len(m.result.Data))) + "\n")
		sb.WriteString(m.tbl.View() + "\n")
	}
	sb.WriteString(stylesheet.Hint.Render("enter: search / esc: quit"))
	return sb.String()
}

// RunOnce performs a single non-interactive search and writes the rendered
// table to w, mirroring what one interactive submission would display.
// History is recorded on success unless recordHistory is false.
func RunOnce(ctx context.Context, cli *client.Client, store *history.Store, query string, maxResults int, recordHistory bool, w io.Writer) error {
	resp, err := cli.Search(ctx, query, &types.SearchOptions{MaxResults: maxResults})
	if err != nil {
		return err
	}
	if recordHistory {
		if err := store.Append(history.New(query)); err != nil {
			clilog.Writer.Errorf("failed to persist history: %v", err)
		}
	}
	fmt.Fprintln(w, CountLine(len(resp.Data)))
	fmt.Fprintln(w, NewResultTable(resp.Data, 0).View())
	return nil
}
