package main

import (
	"context"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/api/controllers"
	"github.com/Ayesha86527/KisanDost/internal/domain/events"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"
	"github.com/Ayesha86527/KisanDost/internal/domain/services"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"
	"github.com/Ayesha86527/KisanDost/internal/impl/database"
	"github.com/Ayesha86527/KisanDost/internal/impl/integrations"
	"github.com/Ayesha86527/KisanDost/internal/impl/media"
	repomemory "github.com/Ayesha86527/KisanDost/internal/impl/repositories/memory"
	repomongo "github.com/Ayesha86527/KisanDost/internal/impl/repositories/mongo"
	"github.com/Ayesha86527/KisanDost/internal/impl/tools"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig()
	if err != nil {
		logger.Fatal("Failed to initialize config", zap.Error(err))
	}

	unsubscribe := events.SubscribeToToolCallEvents(func(data events.ToolCallEventData) {
		logger.Info("Tool call executed",
			zap.String("session_key", data.SessionID),
			zap.String("tool_name", data.ToolName),
			zap.String("arguments", data.Arguments))
	})
	defer unsubscribe()

	sessionRepo := newSessionRepository(cfg, logger)

	registry := tools.NewToolRegistry(logger)
	if cfg.TavilyAPIKey != "" {
		if err := registry.RegisterTool(tools.NewWebSearchTool(cfg.TavilyAPIKey, logger)); err != nil {
			logger.Fatal("Failed to register web search tool", zap.Error(err))
		}
	} else {
		logger.Warn("Web search tool disabled; TAVILY_API_KEY not set")
	}

	model, err := integrations.NewGroqIntegration(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model integration", zap.Error(err))
	}

	agent, err := services.NewAgentService(model, registry, sessionRepo, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize agent service", zap.Error(err))
	}

	pipeline := services.NewPipelineService(
		agent,
		media.NewHTTPOCRExtractor(cfg.OCRServiceURL, logger),
		media.NewHTTPTranscriber(cfg.ASRServiceURL, logger),
		media.NewHTTPTranslator(cfg.TranslateServiceURL, logger),
		media.NewHTTPSynthesizer(cfg.TTSServiceURL, cfg.VoiceOutputDir(), logger),
		cfg,
		logger,
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	controllers.NewHealthController().RegisterRoutes(e)
	controllers.NewFarmerQueryController(pipeline, cfg, logger).RegisterRoutes(e)

	logger.Info("Starting server", zap.String("address", cfg.ServerAddress))
	if err := e.Start(cfg.ServerAddress); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

// newSessionRepository picks the MongoDB backing when MONGO_URI is set
// and falls back to the in-memory store otherwise.
func newSessionRepository(cfg *config.Config, logger *zap.Logger) interfaces.SessionRepository {
	if cfg.MongoURI == "" {
		logger.Info("Using in-memory session store")
		return repomemory.NewSessionRepository(logger)
	}

	db, err := database.NewMongoDB(cfg.MongoURI, "kisandost", logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	repo := repomongo.NewSessionRepository(db.Collection("sessions"), logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create session indexes", zap.Error(err))
	}
	return repo
}
