package api

import (
	"log"

	authDelivery "jobtrail-backend/internal/auth/delivery"
	authRepo "jobtrail-backend/internal/auth/repository"
	"jobtrail-backend/internal/sync"
	trackerDelivery "jobtrail-backend/internal/tracker/delivery"
	trackerRepo "jobtrail-backend/internal/tracker/repository"
	trackerUsecase "jobtrail-backend/internal/tracker/usecase"
	"jobtrail-backend/pkg/ai"
	"jobtrail-backend/pkg/calendar"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/gmail"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler wires repositories, use cases and HTTP handlers together and owns
// the gin engine plus the background sync scheduler.
type Handler struct {
	engine    *gin.Engine
	scheduler *sync.Scheduler
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	// Repositories
	userRepo := authRepo.NewUserRepository(db)
	companyRepo := trackerRepo.NewCompanyRepository(db)
	contactRepo := trackerRepo.NewContactRepository(db)
	applicationRepo := trackerRepo.NewApplicationRepository(db)
	messageRepo := trackerRepo.NewMessageRepository(db)
	eventRepo := trackerRepo.NewEventRepository(db)
	calendarEventRepo := trackerRepo.NewCalendarEventRepository(db)

	// Google clients
	gmailClient := gmail.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret)
	calendarWriter := calendar.NewWriter(cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Classifier: model strategy is optional, rules always available
	var model ai.ModelClassifier
	switch cfg.AIProvider {
	case "gemini":
		if gemini := ai.NewGeminiClassifier(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout); gemini != nil {
			model = gemini
		}
	default:
		if ollama := ai.NewOllamaClassifier(ai.Options{
			Endpoint:        cfg.OllamaBaseURL,
			Model:           cfg.OllamaModel,
			Timeout:         cfg.OllamaTimeout,
			Temperature:     cfg.OllamaTemperature,
			MaxOutputTokens: cfg.OllamaMaxOutputTokens,
		}); ollama != nil {
			model = ollama
		}
	}
	if model == nil {
		log.Printf("[AI] provider %q not configured, classification runs on rules only", cfg.AIProvider)
	}
	classifier := ai.NewEmailClassifier(model)

	// Use cases
	ingester := trackerUsecase.NewIngester(companyRepo, contactRepo, applicationRepo, messageRepo, eventRepo, calendarEventRepo, classifier, calendarWriter)
	trackerUc := trackerUsecase.NewTrackerUsecase(applicationRepo, messageRepo, eventRepo)
	triageUc := trackerUsecase.NewTriageUsecase(messageRepo)

	// Background sync
	orchestrator := sync.NewOrchestrator(gmailClient, gmailClient, ingester, userRepo, cfg.SyncLookback)
	scheduler := sync.NewScheduler(orchestrator, userRepo, cfg.SyncInterval, cfg.SyncRunTimeout, cfg.SyncMaxUsers)

	// HTTP
	verifier := authDelivery.NewJWTVerifier(cfg.JWTSecret)
	authHandler := authDelivery.NewAuthHandler(userRepo, verifier)
	trackerHandler := trackerDelivery.NewTrackerHandler(trackerUc, triageUc, classifier)

	engine := gin.Default()
	SetupRoutes(engine, verifier, userRepo, authHandler, trackerHandler, orchestrator)

	return &Handler{
		engine:    engine,
		scheduler: scheduler,
	}
}

// Start launches the background scheduler and then serves HTTP.
func (h *Handler) Start(addr string) error {
	h.scheduler.Start()
	return h.engine.Run(addr)
}

// Stop shuts down the background scheduler.
func (h *Handler) Stop() {
	h.scheduler.Stop()
}
