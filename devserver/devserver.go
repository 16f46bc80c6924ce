/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

/*
Package devserver hosts the development HTTP server.

It plays the role the bundler dev server fills in production development
workflows: it serves the static page assets, rewrites stylesheet resource
references on the fly (see the assets package), and forwards the /api
namespace to the real backend with the prefix stripped and the Host header
rewritten so the backend sees a same-origin request.
*/
package devserver

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Ciscokidok/servicenow-agent/assets"
	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/fsnotify/fsnotify"
)

// Server serves assets and proxies API calls during development.
type Server struct {
	cfg    Config
	proxy  *httputil.ReverseProxy
	static http.Handler

	mu       sync.RWMutex
	cssCache map[string][]byte // request path -> rewritten stylesheet

	watcher *fsnotify.Watcher
}

// New validates cfg, fills defaults, and returns a ready Server.
func New(cfg Config) (*Server, error) {
	cfg.applyDefaults()
	target, err := url.Parse(cfg.Backend)
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Director: func(r *http.Request) {
			r.URL.Scheme = target.Scheme
			r.URL.Host = target.Host
			r.URL.Path = strings.TrimPrefix(r.URL.Path, APIPrefix)
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			// single fixed target; the backend must see its own origin
			r.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			clilog.Writer.Errorf("proxy to %v failed for %v: %v", target.Host, r.URL.Path, err)
			http.Error(w, "backend unavailable", http.StatusBadGateway)
		},
	}

	return &Server{
		cfg:      cfg,
		proxy:    proxy,
		static:   http.FileServer(http.Dir(cfg.AssetRoot)),
		cssCache: make(map[string][]byte),
	}, nil
}

// Config returns the effective (defaulted) configuration.
func (s *Server) Config() Config { return s.cfg }

// Handler returns the root handler: /api to the proxy, everything else to
// asset serving.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(APIPrefix+"/", s.proxy)
	mux.Handle(APIPrefix, s.proxy)
	mux.HandleFunc("/", s.serveAsset)
	return mux
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	if *s.cfg.RewriteCSS && strings.HasSuffix(r.URL.Path, ".css") {
		s.serveCSS(w, r)
		return
	}
	s.static.ServeHTTP(w, r)
}

// serveCSS serves a stylesheet with url(...) references rewritten against the
// public base, caching the rewritten form until the file changes on disk.
func (s *Server) serveCSS(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path

	s.mu.RLock()
	cached, ok := s.cssCache[upath]
	s.mu.RUnlock()
	if !ok {
		f, err := http.Dir(s.cfg.AssetRoot).Open(upath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		raw, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		cached = []byte(assets.RewriteStylesheet(string(raw), s.cfg.PublicBase))
		s.mu.Lock()
		s.cssCache[upath] = cached
		s.mu.Unlock()
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write(cached)
}

// Watch begins invalidating the rewritten-stylesheet cache when files under
// the asset root change. Best-effort: a watch failure only costs liveness of
// edits, so errors are logged rather than fatal.
func (s *Server) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = w

	// watch the whole tree; fsnotify is not recursive on its own
	err = filepath.WalkDir(s.cfg.AssetRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		s.watcher = nil
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, open := <-w.Events:
				if !open {
					return
				}
				if ev.Op.Has(fsnotify.Create) {
					if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
						if err := w.Add(ev.Name); err != nil {
							clilog.Writer.Warnf("failed to watch new directory %v: %v", ev.Name, err)
						}
						continue
					}
				}
				if strings.HasSuffix(ev.Name, ".css") {
					clilog.Writer.Debugf("stylesheet %v changed (%v), dropping rewrite cache", ev.Name, ev.Op)
					s.mu.Lock()
					clear(s.cssCache)
					s.mu.Unlock()
				}
			case err, open := <-w.Errors:
				if !open {
					return
				}
				clilog.Writer.Warnf("asset watcher error: %v", err)
			}
		}
	}()
	return nil
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Watch(ctx); err != nil {
		clilog.Writer.Warnf("asset watching disabled: %v", err)
	}

	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	clilog.Writer.Infof("dev server listening on %v (backend %v, assets %v)",
		s.cfg.Listen, s.cfg.Backend, s.cfg.AssetRoot)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
