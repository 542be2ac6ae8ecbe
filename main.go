package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/analytics"
	"github.com/matthewkirk009-hue/baseball-sim/internal/auth"
	"github.com/matthewkirk009-hue/baseball-sim/internal/dal"
	"github.com/matthewkirk009-hue/baseball-sim/internal/handlers"
	"github.com/matthewkirk009-hue/baseball-sim/internal/logger"
	"github.com/matthewkirk009-hue/baseball-sim/internal/mocks"
	"github.com/matthewkirk009-hue/baseball-sim/internal/pubsub"
)

var (
	dataStore    dal.LeagueDAL
	authProvider auth.AuthProvider
	ps           pubsub.Upstream
	statsClient  analytics.Recorder
)

func main() {
	// Initialize logger first
	logger.Init()

	logger.Info("Starting baseball sim service")

	// Initialize database driver
	dbDriver := os.Getenv("DB_DRIVER")
	if dbDriver == "" {
		dbDriver = "memory"
	}

	var err error
	switch dbDriver {
	case "memory":
		dataStore = dal.NewMemoryDAL()
		logger.Info("Using in-memory data store")
	case "sqlite":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "dev.sqlite"
		}
		dataStore, err = dal.NewSQLiteDAL(sqliteFile)
		if err != nil {
			logger.Error("Failed to initialize SQLite", "error", err)
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		logger.Info("Connected to SQLite database", "file", sqliteFile)
	case "postgres":
		dbConnString := os.Getenv("DATABASE_URL")
		if dbConnString == "" {
			logger.Error("DATABASE_URL environment variable is required for postgres driver")
			log.Fatal("DATABASE_URL environment variable is required for postgres driver")
		}
		dataStore, err = dal.NewPostgresDAL(dbConnString)
		if err != nil {
			logger.Error("Failed to initialize Postgres", "error", err)
			log.Fatalf("Failed to initialize Postgres: %v", err)
		}
		logger.Info("Connected to Postgres database")
	case "mock-postgres":
		sqliteFile := os.Getenv("SQLITE_FILE")
		if sqliteFile == "" {
			sqliteFile = "mock-postgres.sqlite"
		}
		dataStore, err = mocks.NewMockPostgresDAL(sqliteFile)
		if err != nil {
			logger.Error("Failed to initialize mock Postgres", "error", err)
			log.Fatalf("Failed to initialize mock Postgres: %v", err)
		}
	default:
		logger.Error("Unknown DB_DRIVER", "driver", dbDriver)
		log.Fatalf("Unknown DB_DRIVER: %s (valid: memory, sqlite, postgres, mock-postgres)", dbDriver)
	}
	defer dataStore.Close()

	// Initialize pub/sub (NATS JetStream or Embedded NATS for local development)
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	natsSubject := os.Getenv("NATS_SUBJECT")
	if natsSubject == "" {
		natsSubject = "sim.events"
	}

	environment := os.Getenv("ENVIRONMENT")

	// Use embedded NATS in development mode, real NATS in production
	if environment == "" || environment == "development" {
		logger.Info("Starting embedded NATS server for local development")
		embeddedNats, err := pubsub.NewEmbeddedNATSPubSub(pubsub.EmbeddedNATSOptions{
			Port:       -1, // Random available port
			Subject:    natsSubject,
			StreamName: "SIM_EVENTS",
			StoreDir:   "", // In-memory storage
		})
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		ps = embeddedNats
		logger.Info("Embedded NATS server ready", "url", embeddedNats.GetServerURL())
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(natsURL, natsSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		ps = realNats
		logger.Info("Connected to NATS", "url", natsURL)
	}

	// Initialize analytics client (or mock in development)
	if environment == "" || environment == "development" {
		statsClient = mocks.NewMockAnalyticsClient()
	} else {
		chAddr := os.Getenv("CLICKHOUSE_ADDR")
		if chAddr == "" {
			chAddr = "localhost:9000"
		}
		chDB := os.Getenv("CLICKHOUSE_DB")
		if chDB == "" {
			chDB = "default"
		}
		chUser := os.Getenv("CLICKHOUSE_USER")
		if chUser == "" {
			chUser = "default"
		}
		chPass := os.Getenv("CLICKHOUSE_PASSWORD")

		statsClient, err = analytics.NewClient(chAddr, chDB, chUser, chPass)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", chAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		logger.Info("Connected to ClickHouse", "address", chAddr, "database", chDB)
	}
	defer statsClient.Close()

	// Initialize authentication
	// Use mock auth in development mode, Authentik OAuth2 in production
	if environment == "" || environment == "development" {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authentikBaseURL := os.Getenv("AUTHENTIK_BASE_URL")
		authentikClientID := os.Getenv("AUTHENTIK_CLIENT_ID")
		authentikClientSecret := os.Getenv("AUTHENTIK_CLIENT_SECRET")
		authentikRedirectURL := os.Getenv("AUTHENTIK_REDIRECT_URL")

		if authentikBaseURL == "" || authentikClientID == "" || authentikClientSecret == "" {
			logger.Error("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
			log.Fatal("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET environment variables are required for production")
		}

		if authentikRedirectURL == "" {
			authentikRedirectURL = "http://localhost:3000/auth/callback"
		}

		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      authentikBaseURL,
			ClientID:     authentikClientID,
			ClientSecret: authentikClientSecret,
			RedirectURL:  authentikRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Connected to Authentik", "url", authentikBaseURL)
	}

	// Load player and team images into Postgres when present
	if pgDAL, ok := dataStore.(*dal.PostgresDAL); ok {
		if err := pgDAL.MigrateImagesToDatabase(); err != nil {
			logger.Warn("Image migration skipped", "error", err)
		}
	}

	// Set up HTTP routes
	mux := http.NewServeMux()

	// Static files
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Image serving from database (fallback to static files if not in DB)
	mux.HandleFunc("/images/", serveImageHandler)

	// Auth routes (public)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	// API routes
	api := handlers.NewAPIHandlers(dataStore, pubsub.NewWithUpstream(ps), statsClient)

	// League API
	mux.HandleFunc("/api/league", api.GetLeagueState)
	mux.HandleFunc("/api/league/reset", authProvider.Middleware(api.ResetLeague))

	// Teams API
	mux.HandleFunc("/api/teams", api.ListTeams)
	mux.HandleFunc("/api/teams/add", api.AddTeam)
	mux.HandleFunc("/api/teams/update", api.UpdateTeam)
	mux.HandleFunc("/api/teams/delete", authProvider.Middleware(api.DeleteTeam))
	mux.HandleFunc("/api/teams/overall", api.GetTeamOverall)

	// Players API
	mux.HandleFunc("/api/players/add", api.AddPlayer)
	mux.HandleFunc("/api/players/update", api.UpdatePlayer)
	mux.HandleFunc("/api/players/delete", api.DeletePlayer)
	mux.HandleFunc("/api/players/attributes", api.SetPlayerAttributes)
	mux.HandleFunc("/api/players/overall", api.GetPlayerOverall)

	// Games API
	mux.HandleFunc("/api/games/start", api.StartGame)
	mux.HandleFunc("/api/games/play", api.PlayNext)
	mux.HandleFunc("/api/games/half", api.PlayHalfInning)
	mux.HandleFunc("/api/games/full", api.PlayFullGame)
	mux.HandleFunc("/api/games/state", api.GetGameState)

	// Seasons API
	mux.HandleFunc("/api/seasons", api.ListSeasons)
	mux.HandleFunc("/api/seasons/create", api.CreateSeason)
	mux.HandleFunc("/api/seasons/play", api.PlaySeasonGames)
	mux.HandleFunc("/api/seasons/state", api.GetSeasonState)
	mux.HandleFunc("/api/seasons/standings", api.GetSeasonStandings)
	mux.HandleFunc("/api/seasons/leaders", api.GetSeasonLeaders)
	mux.HandleFunc("/api/seasons/export", api.ExportSeason)
	mux.HandleFunc("/api/seasons/import", api.ImportSeason)
	mux.HandleFunc("/api/seasons/delete", authProvider.Middleware(api.DeleteSavedSeason))

	// Analytics API
	mux.HandleFunc("/api/analytics/leaders", api.AnalyticsLeaders)

	// SSE for realtime updates
	mux.HandleFunc("/api/events", api.EventsSSE)

	// Health check endpoints
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/healthz", livenessHandler) // Kubernetes liveness probe
	mux.HandleFunc("/readyz", readinessHandler) // Kubernetes readiness probe

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	addr := "0.0.0.0:" + port
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			log.Fatal(err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	// Check database connectivity
	if dataStore != nil {
		_, err := dataStore.GetState()
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Check ClickHouse connectivity (only in production)
	environment := os.Getenv("ENVIRONMENT")
	if environment == "production" && statsClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		_, err := statsClient.TopHomeRunHitters(ctx, 1)
		cancel()
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			checks["clickhouse"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
		} else {
			checks["clickhouse"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else if environment == "production" {
		checks["clickhouse"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// NATS connection health is handled internally by the client
	if environment == "production" && ps != nil {
		checks["nats"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// livenessHandler handles Kubernetes liveness probes
// Returns 200 if the application is running (doesn't check dependencies)
func livenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// readinessHandler handles Kubernetes readiness probes
// Returns 200 if the application is ready to serve traffic (checks critical dependencies)
func readinessHandler(w http.ResponseWriter, r *http.Request) {
	if dataStore != nil {
		_, err := dataStore.GetState()
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "not_ready",
				"reason":    "database_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}

// serveImageHandler serves images from the database or falls back to static files
func serveImageHandler(w http.ResponseWriter, r *http.Request) {
	imagePath := "/static" + r.URL.Path // Convert /images/xyz.png to /static/images/xyz.png

	// Try to get image from database if using PostgresDAL
	if pgDAL, ok := dataStore.(*dal.PostgresDAL); ok {
		imageData, err := pgDAL.GetPlayerImageByPath(imagePath)
		if err == nil && len(imageData) > 0 {
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Cache-Control", "public, max-age=31536000") // Cache for 1 year
			w.Write(imageData)
			return
		}
	}

	// Fallback to serving from static files
	http.ServeFile(w, r, "static"+r.URL.Path)
}
