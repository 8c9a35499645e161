package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/handlers"
	"github.com/Universesboy/french-streak-app/internal/config"
	"github.com/Universesboy/french-streak-app/internal/jobs"
	"github.com/Universesboy/french-streak-app/internal/storage"
	"github.com/Universesboy/french-streak-app/middleware"
	"github.com/Universesboy/french-streak-app/services"
)

var (
	cfg            *config.Config
	dbPool         *pgxpool.Pool
	firestoreStore *storage.FirestoreStore
	dataService    *services.DataService
	streakService  *services.StreakService
	scheduler      *jobs.Scheduler
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if cfg.ClerkSecretKey == "" {
		log.Println("Warning: CLERK_SECRET_KEY is not set, all requests will be treated as anonymous")
	} else {
		clerk.SetKey(cfg.ClerkSecretKey)
		log.Println("Clerk initialized successfully")
	}

	local, err := storage.NewLocalStore(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize local store: ", err)
	}
	log.Printf("Local store ready at %s", cfg.DataDir)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var remote storage.StateStore
	switch cfg.RemoteBackend {
	case "firestore":
		fs, err := storage.NewFirestoreStore(ctx, cfg.FirebaseKeyFile)
		if err != nil {
			// The app stays usable on the local store alone.
			log.Printf("Warning: could not initialize Firestore, running local-only: %v", err)
		} else {
			remote = fs
			firestoreStore = fs
			log.Println("Firestore remote store initialized successfully")
		}
	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to parse database URL: ", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool: ", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database: ", err)
		}

		ps, err := storage.NewPostgresStore(ctx, dbPool)
		if err != nil {
			log.Fatal("Failed to initialize postgres store: ", err)
		}
		remote = ps
		log.Println("Postgres remote store initialized successfully")
	case "none":
		log.Println("Remote store disabled, running local-only")
	}

	dataService = services.NewDataService(local, remote)
	streakService = services.NewStreakService(dataService)

	if remote != nil {
		scheduler = jobs.NewScheduler(dataService, cfg.RepairCron)
	}

	middleware.InitPrometheus()
	middleware.ConfigureRateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
}

func main() {
	defer func() {
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
		if firestoreStore != nil {
			log.Println("Closing Firestore client...")
			firestoreStore.Close()
		}
	}()

	streakHandler := handlers.NewStreakHandler(streakService)
	adminHandler := handlers.NewAdminHandler(dataService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.AdminAuthMiddleware(cfg.AdminUser, cfg.AdminPasswordHash, promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "french-streak-app"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// STREAK API (optional auth: anonymous devices stay local-only)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.OptionalAuthMiddleware)

	api.HandleFunc("/streak", streakHandler.GetState).Methods("GET")
	api.HandleFunc("/streak", streakHandler.SaveState).Methods("PUT")
	api.HandleFunc("/streak/can-check-in", streakHandler.CanCheckIn).Methods("GET")
	api.HandleFunc("/streak/check-in", streakHandler.CheckIn).Methods("POST")
	api.HandleFunc("/streak/session/start", streakHandler.StartSession).Methods("POST")
	api.HandleFunc("/streak/session/stop", streakHandler.StopSession).Methods("POST")
	api.HandleFunc("/streak/session", streakHandler.GetSession).Methods("GET")
	api.HandleFunc("/streak/stats", streakHandler.GetStats).Methods("GET")

	// Specific summary routes go before the {granularity} catch-all.
	api.HandleFunc("/streak/summary/recent", streakHandler.GetRecentSummary).Methods("GET")
	api.HandleFunc("/streak/summary/range", streakHandler.GetRangeTotal).Methods("GET")
	api.HandleFunc("/streak/summary/{granularity}", streakHandler.GetSummary).Methods("GET")

	// -------------------------------------------------------------------------
	// ADMIN (basic auth against bcrypt hash)
	// -------------------------------------------------------------------------
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.AdminAuthMiddleware(cfg.AdminUser, cfg.AdminPasswordHash, next)
	})
	admin.HandleFunc("/repair/{uid}", adminHandler.RepairUser).Methods("POST")
	admin.HandleFunc("/repair-all", adminHandler.RepairAll).Methods("POST")

	if scheduler != nil {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Printf("Warning: scheduler failed to start: %v", err)
		}
		defer scheduler.Stop()
	}

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Device-ID"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "X-Device-ID"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal: ", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
