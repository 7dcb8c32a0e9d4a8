package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecotrackAPI/handlers"
	"ecotrackAPI/internal/database"
	"ecotrackAPI/internal/identity"
	"ecotrackAPI/internal/workers"
	"ecotrackAPI/middleware"
	"ecotrackAPI/services"
)

const reconcileInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := database.NewPool(ctx, dbURL)
	if err != nil {
		cancel()
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Bootstrap(ctx, dbPool); err != nil {
		cancel()
		log.Fatal("Failed to bootstrap schema: ", err)
	}
	cancel()
	log.Println("Successfully connected to Postgres")

	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	verifier, err := identity.NewVerifier(context.Background(), "./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize Firebase verifier: ", err)
	}
	log.Println("Firebase identity verifier initialized")

	middleware.InitPrometheus()

	challengeService := services.NewChallengeService(dbPool)
	participationService := services.NewParticipationService(dbPool)
	contentService := services.NewContentService(dbPool)
	userService := services.NewUserService(dbPool)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	participationHandler := handlers.NewParticipationHandler(participationService)
	contentHandler := handlers.NewContentHandler(contentService)
	userHandler := handlers.NewUserHandler(userService)

	go middleware.CleanupVisitors()
	workers.StartReconcileWorker(challengeService, reconcileInterval, middleware.ObserveCounterDrift)

	r := mux.NewRouter()
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("EcoTrack API running..."))
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "ecotrack-api"}`))
	}).Methods("GET")

	r.HandleFunc("/users", userHandler.RegisterUser).Methods("POST")

	r.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	r.HandleFunc("/challenges/sort", challengeHandler.FeaturedChallenges).Methods("GET")
	r.HandleFunc("/challenges/{id}", challengeHandler.GetChallenge).Methods("GET")
	r.HandleFunc("/challenges/{id}", challengeHandler.UpdateChallenge).Methods("PATCH")
	r.HandleFunc("/challenges/{id}", challengeHandler.DeleteChallenge).Methods("DELETE")

	r.HandleFunc("/userChallenges", participationHandler.ListJoins).Methods("GET")
	r.HandleFunc("/userChallenges/{userId}", participationHandler.ListJoinsByUser).Methods("GET")
	r.HandleFunc("/userChallenges/{userId}/{challengeId}", participationHandler.UpdateJoinStatus).Methods("PATCH")

	r.HandleFunc("/tips", contentHandler.ListTips).Methods("GET")
	r.HandleFunc("/tips/recent", contentHandler.RecentTips).Methods("GET")
	r.HandleFunc("/events", contentHandler.ListEvents).Methods("GET")
	r.HandleFunc("/events/upcoming", contentHandler.UpcomingEvents).Methods("GET")
	r.HandleFunc("/stats", contentHandler.GetStats).Methods("GET")

	// Routes that stamp the caller identity sit behind token verification.
	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.FirebaseAuthMiddleware(verifier))
	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/userChallenges", participationHandler.JoinChallenge).Methods("POST")

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("EcoTrack server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
