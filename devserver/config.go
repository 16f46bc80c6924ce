/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package devserver

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls the development server. Zero values fall back to the
// defaults below, so a partial YAML file or bare flags both work.
type Config struct {
	// Listen is the address the dev server binds, e.g. ":3000".
	Listen string `yaml:"listen"`
	// Backend is the API origin /api requests are forwarded to.
	Backend string `yaml:"backend"`
	// AssetRoot is the directory static assets are served from.
	AssetRoot string `yaml:"asset_root"`
	// PublicBase is the origin substituted into rewritten stylesheet
	// references. It should be the address browsers reach this server at.
	PublicBase string `yaml:"public_base"`
	// RewriteCSS disables the stylesheet rewrite when false. Only the dev
	// profile runs this server, so it defaults on.
	RewriteCSS *bool `yaml:"rewrite_css,omitempty"`
}

const (
	DefaultListen    = ":3000"
	DefaultBackend   = "http://localhost:8000"
	DefaultAssetRoot = "public"

	// APIPrefix is the path namespace forwarded to the backend.
	APIPrefix = "/api"
)

// LoadConfig reads a YAML config file, tolerating absence (path == "" or a
// missing file yields the zero Config).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.AssetRoot == "" {
		c.AssetRoot = DefaultAssetRoot
	}
	if c.PublicBase == "" {
		c.PublicBase = "http://localhost" + c.Listen
	}
	if c.RewriteCSS == nil {
		t := true
		c.RewriteCSS = &t
	}
}
