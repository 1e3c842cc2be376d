package cmd

import (
	"fmt"

	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/localsearch"
)

// openBackend picks the search backend from the configuration: the hosted
// service when a backend URL is configured, the local bleve index
// otherwise. The returned closer is a no-op for the hosted client.
func openBackend(cfg *config.Config) (docsearch.Backend, func() error, error) {
	if cfg.Backend.URL != "" {
		client := docsearch.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Collection)
		return client, func() error { return nil }, nil
	}

	path, err := indexPath(cfg)
	if err != nil {
		return nil, nil, err
	}

	ix, err := localsearch.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening local index (run 'docpane index build' first): %w", err)
	}
	return ix, ix.Close, nil
}

// indexPath resolves the local index location, falling back to the XDG
// data directory.
func indexPath(cfg *config.Config) (string, error) {
	if cfg.IndexPath != "" {
		return cfg.IndexPath, nil
	}
	return config.GetDefaultIndexPath()
}
