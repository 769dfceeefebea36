package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/carebow/triage-api/internal/adapters/analyzer"
	httpadapter "github.com/carebow/triage-api/internal/adapters/http"
	"github.com/carebow/triage-api/internal/adapters/identity"
	firestorestore "github.com/carebow/triage-api/internal/adapters/storage/firestore"
	memstore "github.com/carebow/triage-api/internal/adapters/storage/memory"
	sqlitestore "github.com/carebow/triage-api/internal/adapters/storage/sqlite"
	"github.com/carebow/triage-api/internal/app/records"
	"github.com/carebow/triage-api/internal/app/triage"
	"github.com/carebow/triage-api/internal/config"
	"github.com/carebow/triage-api/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Analyzer: mock, OpenAI, or Gemini by config.
	var (
		symptomAnalyzer domain.SymptomAnalyzer
		err             error
	)
	switch cfg.AnalyzerBackend {
	case config.AnalyzerOpenAI:
		log.Println("[ANALYZER] Using OpenAI analyzer")
		symptomAnalyzer, err = analyzer.NewOpenAIAnalyzer(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("error initializing OpenAI analyzer: %v", err)
		}
	case config.AnalyzerGemini:
		log.Println("[ANALYZER] Using Gemini analyzer")
		symptomAnalyzer, err = analyzer.NewGeminiAnalyzer(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("error initializing Gemini analyzer: %v", err)
		}
	default:
		log.Println("[ANALYZER] Using MOCK analyzer")
		symptomAnalyzer = analyzer.NewMockAnalyzer()
	}

	// Storage: memory, sqlite, or Firestore.
	var (
		profileStore domain.ProfileStore
		archive      domain.AssessmentArchive
	)
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
		profileStore = fsStore
		archive = fsStore

	case "sqlite":
		log.Printf("[STORE] Using sqlite archive at %s", cfg.SQLitePath)
		sqlStore, err := sqlitestore.NewStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("error initializing sqlite store: %v", err)
		}
		// Profiles stay in memory; only assessments need durability here.
		profileStore = memstore.NewProfileStore()
		archive = sqlStore

	default:
		log.Println("[STORE] Using in-memory storage")
		profileStore = memstore.NewProfileStore()
		archive = memstore.NewAssessmentArchive()
	}

	registry := triage.NewRegistry(
		symptomAnalyzer,
		httpadapter.RequestCredentials{},
		profileStore,
		archive,
		cfg.SessionTTL,
	)
	recordsSvc := records.NewService(archive)

	ids := identity.NewLocal(domain.UserID(cfg.LocalUser))
	handler := httpadapter.NewServer(registry, recordsSvc, ids)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Println("Triage API listening on port:", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
