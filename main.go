package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"phishing-detector/features"
	"phishing-detector/verdict"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	// Get port from environment (for cloud deployment) or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	patterns, err := features.LoadPatterns(os.Getenv("PATTERNS_FILE"))
	if err != nil {
		log.Fatal(err)
	}

	engine := features.NewEngine(features.ConfigFromEnv(), patterns)
	classifier := verdict.ClassifierFromEnv()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", features.HealthHandler)

	// Feature extraction
	r.Post("/extract", features.ExtractHandler(engine))

	// Extraction + classification
	r.Post("/result", verdict.ResultHandler(engine, classifier))

	// Static files
	r.Get("/", features.IndexHandler)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("✅ phishing-detector listening on :%s\n", port)
	log.Println("📍 Endpoints:")
	log.Println("   GET  /health       - Liveness")
	log.Println("   POST /extract      - Feature vector for a URL")
	log.Println("   POST /result       - Safe/unsafe verdict for a URL")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
