package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/forkliftia/case-service/internal/ai"
	"github.com/forkliftia/case-service/internal/config"
	"github.com/forkliftia/case-service/internal/database"
	"github.com/forkliftia/case-service/internal/handler"
	"github.com/forkliftia/case-service/internal/kafka"
	"github.com/forkliftia/case-service/internal/manuals"
	"github.com/forkliftia/case-service/internal/router"
	"github.com/forkliftia/case-service/internal/service"
	"github.com/forkliftia/case-service/internal/storage"
)

// API is the HTTP application. Collaborators (store backend, LLM client,
// admin list, event producer) are resolved once here and injected.
type API struct {
	cfg     *config.Config
	httpSrv *http.Server
	llm     *ai.GeminiClient
	events  *kafka.Producer
}

func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	var llm *ai.GeminiClient
	var generator service.Generator
	if cfg.GeminiAPIKey != "" {
		llm, err = ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("ai: %w", err)
		}
		generator = llm
	} else {
		log.Println("ai: GEMINI_API_KEY not set, diagnosis falls back to stored cases only")
	}

	events := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicCase)

	manualStore := manuals.NewStore(cfg.ManualsPath)
	caseSvc := service.NewCaseService(store, cfg.AdminUIDs)
	diagSvc := service.NewDiagnosisService(store, manualStore, generator)

	caseHandler := handler.NewCaseHandler(caseSvc, events)
	diagHandler := handler.NewDiagnosisHandler(diagSvc, events)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(caseHandler, diagHandler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, httpSrv: httpSrv, llm: llm, events: events}, nil
}

func openStore(cfg *config.Config) (storage.CaseStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendJSON:
		store, err := storage.NewJSONCaseStore(cfg.CasesJSONPath)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return store, nil
	default:
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		return storage.NewDatabaseCaseStore(db), nil
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  API v1:        %s/api/v1/", base)
	log.Printf("  Storage:       %s", a.cfg.StorageBackend)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if a.llm != nil {
		a.llm.Close()
	}
	if err := a.events.Close(); err != nil {
		log.Printf("kafka: close: %v", err)
	}
	return nil
}
