package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/maartenverheul/Trek/internal/api"
	"github.com/maartenverheul/Trek/internal/auth"
	"github.com/maartenverheul/Trek/internal/config"
	"github.com/maartenverheul/Trek/internal/mcp"
	"github.com/maartenverheul/Trek/internal/middleware"
	"github.com/maartenverheul/Trek/internal/store/pgstore"
)

func main() {
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := pgstore.New(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	authManager := auth.NewManager(cfg.CookieSecret)
	handlers := api.NewHandlers(db, authManager, log, cfg.GeminiAPIKey)

	mux := http.NewServeMux()

	// Static frontend. The root path serves index.html, everything else under
	// /static/ is served as-is.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
	})
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	mux.HandleFunc("/api/signin", handlers.SignInHandler)
	mux.HandleFunc("/api/signout", handlers.SignOutHandler)
	mux.HandleFunc("/api/me", handlers.MeHandler)
	mux.HandleFunc("/api/maps", handlers.MapsHandler)
	mux.HandleFunc("/api/categories", handlers.CategoriesHandler)
	mux.HandleFunc("/api/markers", handlers.MarkersHandler)
	mux.HandleFunc("/api/markers/grouped", handlers.GroupedMarkersHandler)
	mux.HandleFunc("/api/markers/geojson", handlers.GeoJSONHandler)
	mux.HandleFunc("/api/layers", handlers.LayersHandler)
	mux.HandleFunc("/api/settings", handlers.SettingsHandler)
	mux.HandleFunc("/api/insights", handlers.InsightsHandler)

	// MCP transport for assistant clients. Tools are read-only.
	mux.Handle("/mcp", mcp.NewServer(db).HTTPServer())

	// Apply middleware: Logging -> Auth
	handler := middleware.Logging(log, middleware.Auth(authManager, mux))

	log.Info().Str("addr", cfg.Addr).Msg("Server started")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
