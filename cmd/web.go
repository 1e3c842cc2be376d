package cmd

import (
	"context"
	"embed"
	"fmt"
	stdlog "log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzhttp"
	"github.com/urfave/cli/v3"

	"github.com/docpane/docpane/pkg/api"
	"github.com/docpane/docpane/pkg/config"
	"github.com/docpane/docpane/pkg/docsearch"
	"github.com/docpane/docpane/pkg/facets"
	"github.com/docpane/docpane/pkg/render"
	"github.com/docpane/docpane/pkg/results"
)

//go:embed web/static/*
var staticFS embed.FS

// WebCommand creates the web command with both API and UI
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Start the search server with the results page, API and live websocket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: "8080",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to",
				Value: "localhost",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

// WebServer holds the server configuration and dependencies
type WebServer struct {
	backend   docsearch.Backend
	apiServer *api.Server
	page      *render.Page

	cfgMu sync.RWMutex
	cfg   *config.Config
}

func (s *WebServer) getConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

func (s *WebServer) setConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	s.apiServer.Reload(cfg)
}

// startWebServer starts the web server with both API and UI
func startWebServer(ctx context.Context, configPath, host, port string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			fmt.Printf("Warning: failed to close backend: %v\n", err)
		}
	}()

	page, err := render.NewPage()
	if err != nil {
		return fmt.Errorf("parsing page template: %w", err)
	}

	webServer := &WebServer{
		backend:   backend,
		apiServer: api.NewServer(backend, cfg),
		page:      page,
		cfg:       cfg,
	}

	mux := http.NewServeMux()

	// API routes
	webServer.apiServer.RegisterRoutes(mux)

	// Web UI routes
	mux.HandleFunc("/", webServer.handleHome)
	mux.HandleFunc("GET /search", webServer.handleSearch)

	// Static assets
	mux.HandleFunc("/static/", webServer.handleStatic)

	// CORS plus response compression around everything
	handler := gzhttp.GzipHandler(api.CorsMiddleware(mux))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, port),
		Handler: handler,
	}

	go func() {
		stdlog.Printf("Starting docpane on http://%s:%s", host, port)
		stdlog.Printf("Available endpoints:")
		stdlog.Printf("  Web UI:")
		stdlog.Printf("    GET /search - Documentation search page")
		stdlog.Printf("  API:")
		stdlog.Printf("    GET /api/search - One-shot search (q, page, version parameters)")
		stdlog.Printf("    GET /api/versions - Documentation groups and versions")
		stdlog.Printf("    GET /api/live - Interactive search session (websocket)")
		stdlog.Printf("    GET /health - Health check")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			stdlog.Fatalf("Server failed to start: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		stdlog.Printf("Warning: failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				stdlog.Printf("Warning: failed to close config file watcher: %v", err)
			}
		}()
		if err := watcher.Add(configPath); err != nil {
			stdlog.Printf("Warning: failed to watch config file %s: %v", configPath, err)
		} else {
			stdlog.Printf("Watching config file for changes: %s", configPath)
		}
	}

	reload := func() {
		newCfg, err := config.LoadConfig(configPath)
		if err != nil {
			stdlog.Printf("Failed to reload configuration: %v", err)
			return
		}
		webServer.setConfig(newCfg)
		stdlog.Println("Configuration reloaded successfully")
	}

	for {
		select {
		case <-ctx.Done():
			return shutdown(server)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				stdlog.Println("Received SIGHUP, reloading configuration...")
				reload()
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				return shutdown(server)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				continue
			}
			// Editors often replace the file atomically, so rename and
			// remove count as changes too.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				stdlog.Printf("Config file changed: %s (event: %s), reloading configuration...", event.Name, event.Op.String())

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						stdlog.Printf("Config file was removed and not replaced, skipping reload")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						stdlog.Printf("Warning: failed to re-add config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}

				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				continue
			}
			stdlog.Printf("Config file watcher error: %v", err)
		}
	}
}

func shutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Web UI Handlers

// handleHome redirects to the search page, carrying a query over.
func (s *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	target := "/search"
	if query := r.URL.Query().Get("q"); query != "" {
		target += "?q=" + url.QueryEscape(query)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleSearch server-renders the results page. With a query it fetches
// page 0 so the page is useful without JavaScript; the page script then
// opens the live session for debounced typing and infinite scroll.
func (s *WebServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	cfg := s.getConfig()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := render.PageData{
		Query:      query,
		Locale:     cfg.Search.Locale,
		Selectable: facets.Selectable(cfg.Groups),
		Selection:  facets.DefaultSelection(cfg.Groups),
	}

	state := results.State{}
	if query != "" {
		state = state.StartLoading(query)

		req := docsearch.Request{
			Query:   query,
			Page:    0,
			PerPage: cfg.Search.PageSize,
			Params:  cfg.Search.Params,
		}
		if cfg.Search.Filter != "" {
			req.Filter = cfg.Search.Filter
		} else {
			req.Tags = facets.Tags(cfg.Groups, data.Selection, cfg.Search.Locale)
		}

		resp, err := s.backend.Search(r.Context(), req)
		if err != nil {
			// A failed search renders like no search at all.
			state = state.Reset()
		} else if next, ok := state.Apply(resp); ok {
			state = next
		}
	}

	data.Phase = state.Phase().String()
	data.Items = state.Items
	data.TotalHits = state.TotalHits
	data.HasMore = state.HasMore

	if err := s.page.Render(w, data); err != nil {
		http.Error(w, fmt.Sprintf("Template error: %v", err), http.StatusInternalServerError)
	}
}

// handleStatic serves static assets from embedded files
func (s *WebServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	filePath := "web/static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(path, ".css") {
		w.Header().Set("Content-Type", "text/css")
	} else if strings.HasSuffix(path, ".js") {
		w.Header().Set("Content-Type", "application/javascript")
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		stdlog.Printf("Error writing static content: %v", err)
	}
}
