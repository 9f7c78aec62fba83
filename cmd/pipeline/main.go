// Command pipeline runs one end-to-end assistant pass from the command
// line: label image and/or voice recording in, voice responses out. With
// no inputs it analyzes a built-in demo fertilizer label, and any media
// service whose URL is unset is replaced by a local stand-in so the
// reasoning loop can be exercised offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ayesha86527/KisanDost/internal/domain/events"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"
	"github.com/Ayesha86527/KisanDost/internal/domain/services"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"
	"github.com/Ayesha86527/KisanDost/internal/impl/integrations"
	"github.com/Ayesha86527/KisanDost/internal/impl/media"
	repomemory "github.com/Ayesha86527/KisanDost/internal/impl/repositories/memory"
	"github.com/Ayesha86527/KisanDost/internal/impl/tools"

	"go.uber.org/zap"
)

const demoSessionKey = "kisandost-demo"

const demoLabelText = `GREEN EARTH ORGANICS
Organic Fertilizer NPK 5-3-2
Net Weight: 25 kg
Application: 2-3 kg per acre
Suitable for: Wheat, Rice, Cotton, Vegetables
Apply before irrigation. Store in a cool, dry place.`

func main() {
	imagePath := flag.String("image", "", "path to a product label image")
	audioPath := flag.String("audio", "", "path to a voice recording")
	sessionKey := flag.String("session", demoSessionKey, "session key for conversation memory")
	langs := flag.String("langs", "en,ur,sd", "comma separated response languages")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig()
	if err != nil {
		logger.Fatal("Failed to initialize config", zap.Error(err))
	}

	unsubscribe := events.SubscribeToRunStepEvents(func(data events.RunStepEventData) {
		logger.Debug("Reasoning step recorded",
			zap.String("session_key", data.SessionID),
			zap.Int("step", data.Step),
			zap.Int("messages", len(data.Snapshot)))
	})
	defer unsubscribe()

	registry := tools.NewToolRegistry(logger)
	if cfg.TavilyAPIKey != "" {
		if err := registry.RegisterTool(tools.NewWebSearchTool(cfg.TavilyAPIKey, logger)); err != nil {
			logger.Fatal("Failed to register web search tool", zap.Error(err))
		}
	}

	model, err := integrations.NewGroqIntegration(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model integration", zap.Error(err))
	}

	agent, err := services.NewAgentService(model, registry, repomemory.NewSessionRepository(logger), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize agent service", zap.Error(err))
	}

	pipeline := services.NewPipelineService(
		agent,
		newOCR(cfg, logger),
		newTranscriber(cfg, logger),
		newTranslator(cfg, logger),
		newSynthesizer(cfg, logger),
		cfg,
		logger,
	)

	req := services.PipelineRequest{
		SessionKey: *sessionKey,
		ImagePath:  *imagePath,
		AudioPath:  *audioPath,
		Languages:  strings.Split(*langs, ","),
	}
	if req.ImagePath == "" && req.AudioPath == "" {
		// Feed the demo label through the static OCR stand-in.
		req.ImagePath = "demo-label"
	}

	result, err := pipeline.Run(context.Background(), req)
	if err != nil {
		logger.Fatal("Pipeline run failed", zap.Error(err))
	}

	fmt.Println("Question:", result.Query)
	fmt.Println()
	fmt.Println("Answer:", result.Answer)
	fmt.Println()
	for lang, path := range result.VoiceResponses {
		fmt.Printf("Voice response (%s): %s\n", lang, path)
	}
}

func newOCR(cfg *config.Config, logger *zap.Logger) interfaces.OCRExtractor {
	if cfg.OCRServiceURL != "" {
		return media.NewHTTPOCRExtractor(cfg.OCRServiceURL, logger)
	}
	logger.Warn("OCR_SERVICE_URL not set; using built-in demo label text")
	return staticOCR{}
}

func newTranscriber(cfg *config.Config, logger *zap.Logger) interfaces.Transcriber {
	if cfg.ASRServiceURL != "" {
		return media.NewHTTPTranscriber(cfg.ASRServiceURL, logger)
	}
	logger.Warn("ASR_SERVICE_URL not set; the default farmer question will be used")
	return silentTranscriber{}
}

func newTranslator(cfg *config.Config, logger *zap.Logger) interfaces.Translator {
	if cfg.TranslateServiceURL != "" {
		return media.NewHTTPTranslator(cfg.TranslateServiceURL, logger)
	}
	logger.Warn("TRANSLATE_SERVICE_URL not set; responses stay in English")
	return identityTranslator{}
}

func newSynthesizer(cfg *config.Config, logger *zap.Logger) interfaces.Synthesizer {
	if cfg.TTSServiceURL != "" {
		return media.NewHTTPSynthesizer(cfg.TTSServiceURL, cfg.VoiceOutputDir(), logger)
	}
	logger.Warn("TTS_SERVICE_URL not set; writing response text instead of audio")
	return textSynthesizer{dir: cfg.VoiceOutputDir()}
}

// Local stand-ins used when a media service URL is not configured.

type staticOCR struct{}

func (staticOCR) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if imagePath != "demo-label" {
		return "", fmt.Errorf("OCR service not configured; cannot read %s", imagePath)
	}
	return demoLabelText, nil
}

type silentTranscriber struct{}

func (silentTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	return "", fmt.Errorf("ASR service not configured")
}

type identityTranslator struct{}

func (identityTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return text, nil
}

type textSynthesizer struct {
	dir string
}

func (s textSynthesizer) Synthesize(ctx context.Context, text, language, filenamePrefix string) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.txt", filenamePrefix, language))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
