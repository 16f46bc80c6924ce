package devserver_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ciscokidok/servicenow-agent/devserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, cfg devserver.Config) *httptest.Server {
	t.Helper()
	s, err := devserver.New(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestProxyForwardsAPIRequests(t *testing.T) {
	var gotPath, gotQuery, gotHost string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer backend.Close()

	srv := newServer(t, devserver.Config{Backend: backend.URL, AssetRoot: t.TempDir()})

	resp, err := http.Get(srv.URL + "/api/search_snow?search_query=x")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/search_snow", gotPath, "the /api prefix must be stripped")
	assert.Equal(t, "search_query=x", gotQuery, "the query string passes through")

	bu, err := url.Parse(backend.URL)
	require.NoError(t, err)
	assert.Equal(t, bu.Host, gotHost, "the backend must see its own origin")
}

func TestProxyBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close()

	srv := newServer(t, devserver.Config{Backend: backend.URL, AssetRoot: t.TempDir()})

	resp, err := http.Get(srv.URL + "/api/search_snow")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestServeCSSRewritten(t *testing.T) {
	root := t.TempDir()
	css := ".hero { background-image: url('images/a.png'); }"
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.css"), []byte(css), 0o644))

	srv := newServer(t, devserver.Config{
		Backend:    "http://127.0.0.1:1",
		AssetRoot:  root,
		PublicBase: "http://localhost:3000",
	})

	resp, err := http.Get(srv.URL + "/app.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t,
		".hero { background-image: url('http://localhost:3000/images/a.png'); }",
		string(body))
}

func TestServeNonCSSPassthrough(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte("<html>shell</html>"), 0o644))

	srv := newServer(t, devserver.Config{Backend: "http://127.0.0.1:1", AssetRoot: root})

	resp, err := http.Get(srv.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html>shell</html>", string(body))
}

func TestServeCSSMissing(t *testing.T) {
	srv := newServer(t, devserver.Config{Backend: "http://127.0.0.1:1", AssetRoot: t.TempDir()})

	resp, err := http.Get(srv.URL + "/nope.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := devserver.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Listen)
	})

	t.Run("partial file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "dev.yaml")
		require.NoError(t, os.WriteFile(p, []byte("backend: http://api.internal:9999\n"), 0o644))

		cfg, err := devserver.LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, "http://api.internal:9999", cfg.Backend)

		s, err := devserver.New(cfg)
		require.NoError(t, err)
		assert.Equal(t, devserver.DefaultListen, s.Config().Listen)
		assert.Equal(t, "http://api.internal:9999", s.Config().Backend)
		assert.Equal(t, "http://localhost:3000", s.Config().PublicBase)
	})

	t.Run("malformed file errors", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "dev.yaml")
		require.NoError(t, os.WriteFile(p, []byte(":\n\t- nope"), 0o644))
		_, err := devserver.LoadConfig(p)
		require.Error(t, err)
	})
}
