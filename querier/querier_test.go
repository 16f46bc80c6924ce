package querier

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ciscokidok/servicenow-agent/client"
	"github.com/Ciscokidok/servicenow-agent/client/types"
	"github.com/Ciscokidok/servicenow-agent/history"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *history.Store) {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	// the client is never dialed in these tests; outcomes are injected
	m := New(client.New("http://127.0.0.1:0"), store, 0)
	return m, store
}

func okResponse(n int) types.SearchResponse {
	resp := types.SearchResponse{Success: true}
	for i := 0; i < n; i++ {
		resp.Data = append(resp.Data, types.Ticket{Number: string(rune('A' + i))})
	}
	return resp
}

func TestSubmitEntersLoading(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"plain query", "open incidents"},
		{"empty query is a valid submission", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t)
			cmd := m.submit(tt.query)
			require.NotNil(t, cmd)
			assert.Equal(t, StateLoading, m.State())
			assert.Empty(t, m.Err(), "submission clears any previous error")
		})
	}
}

func TestFinishSuccessRecordsHistory(t *testing.T) {
	m, store := newTestModel(t)
	m.submit("open incidents")

	m.finish(searchDoneMsg{seq: m.seq, query: "open incidents", resp: okResponse(3)})

	assert.Equal(t, StateSuccess, m.State())
	assert.Equal(t, 3, m.ResultCount())
	require.Equal(t, 1, store.Len(), "exactly one entry per successful submission")
	assert.Equal(t, "open incidents", store.Entries()[0].Query)
}

func TestFinishFailureRecordsNothing(t *testing.T) {
	m, store := newTestModel(t)
	m.submit("bad query")

	m.finish(searchDoneMsg{seq: m.seq, query: "bad query", err: errors.New("boom")})

	assert.Equal(t, StateFailed, m.State())
	assert.Equal(t, "boom", m.Err())
	assert.Zero(t, store.Len(), "failed submissions record no history")
}

func TestLoadingNeverRests(t *testing.T) {
	// regardless of outcome, a completed submission must leave Loading
	m, _ := newTestModel(t)

	m.submit("q")
	m.finish(searchDoneMsg{seq: m.seq, query: "q", resp: okResponse(0)})
	assert.NotEqual(t, StateLoading, m.State())

	m.submit("q")
	m.finish(searchDoneMsg{seq: m.seq, query: "q", err: errors.New("nope")})
	assert.NotEqual(t, StateLoading, m.State())
}

func TestStaleResponseDiscarded(t *testing.T) {
	m, store := newTestModel(t)

	m.submit("first")
	firstSeq := m.seq
	m.submit("second")

	// the first submission's late reply must mutate nothing
	m.finish(searchDoneMsg{seq: firstSeq, query: "first", resp: okResponse(5)})
	assert.Equal(t, StateLoading, m.State())
	assert.Zero(t, store.Len())

	m.finish(searchDoneMsg{seq: m.seq, query: "second", resp: okResponse(2)})
	assert.Equal(t, StateSuccess, m.State())
	assert.Equal(t, 2, m.ResultCount())
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "second", store.Entries()[0].Query)
}

func TestResubmissionFromTerminalStates(t *testing.T) {
	m, _ := newTestModel(t)

	m.submit("q")
	m.finish(searchDoneMsg{seq: m.seq, query: "q", err: errors.New("transient")})
	require.Equal(t, StateFailed, m.State())

	m.submit("q again")
	assert.Equal(t, StateLoading, m.State())
	assert.Empty(t, m.Err())
}

func TestUpdateRoutesSearchDone(t *testing.T) {
	m, store := newTestModel(t)
	m.submit("via update")

	_, cmd := m.Update(searchDoneMsg{seq: m.seq, query: "via update", resp: okResponse(1)})
	assert.Nil(t, cmd)
	assert.Equal(t, StateSuccess, m.State())
	assert.Equal(t, 1, store.Len())
}

func TestInteractiveQuit_TeaTest(t *testing.T) {
	m, _ := newTestModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 40))
	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func TestRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") == "explode" {
			w.Write([]byte(`{"success": false, "error": "no such table"}`))
			return
		}
		w.Write([]byte(`{"success": true, "data": [
			{"number":"INC0001","short_description":"printer on fire","state":"2"}
		]}`))
	}))
	defer srv.Close()

	t.Run("success prints and records", func(t *testing.T) {
		store := history.NewStore(filepath.Join(t.TempDir(), "h.json"), 0)
		require.NoError(t, store.Load())
		var out bytes.Buffer

		err := RunOnce(context.Background(), client.New(srv.URL), store,
			"open incidents", 0, true, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "1 record found")
		assert.Contains(t, out.String(), "INC0001")
		assert.Equal(t, 1, store.Len())
	})

	t.Run("no-history skips recording", func(t *testing.T) {
		store := history.NewStore(filepath.Join(t.TempDir(), "h.json"), 0)
		require.NoError(t, store.Load())

		err := RunOnce(context.Background(), client.New(srv.URL), store,
			"open incidents", 0, false, new(bytes.Buffer))
		require.NoError(t, err)
		assert.Zero(t, store.Len())
	})

	t.Run("failure records nothing", func(t *testing.T) {
		store := history.NewStore(filepath.Join(t.TempDir(), "h.json"), 0)
		require.NoError(t, store.Load())

		err := RunOnce(context.Background(), client.New(srv.URL), store,
			"explode", 0, true, new(bytes.Buffer))
		require.Error(t, err)
		assert.Zero(t, store.Len())
	})
}
