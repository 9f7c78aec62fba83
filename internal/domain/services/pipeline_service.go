package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	// maxAnswerLength bounds the text handed to translation and speech
	// synthesis. The cutoff is a hard rune prefix, not sentence-aware.
	maxAnswerLength = 500

	// defaultFarmerQuery substitutes for a voice recording that could not
	// be transcribed.
	defaultFarmerQuery = "Is this fertilizer safe for wheat crops? How often should I apply it?"

	emptyAnswerFallback = "Analysis complete. Please refer to the product label for detailed instructions."
	failureFallback     = "Sorry, the assistant could not analyze your product right now. Please try again later."

	promptTemplate = "Product Label (from OCR):\n%s\n\nFarmer's Question:\n%s\n\nPlease analyze this agricultural product and answer the farmer's question."
)

type PipelineRequest struct {
	SessionKey string
	ImagePath  string
	AudioPath  string
	Languages  []string
}

type PipelineResult struct {
	OCRText        string
	Query          string
	Answer         string
	VoiceResponses map[string]string
}

type PipelineService interface {
	Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error)
}

type pipelineService struct {
	agent       AgentService
	ocr         interfaces.OCRExtractor
	transcriber interfaces.Transcriber
	translator  interfaces.Translator
	synthesizer interfaces.Synthesizer
	cfg         *config.Config
	logger      *zap.Logger
}

func NewPipelineService(
	agent AgentService,
	ocr interfaces.OCRExtractor,
	transcriber interfaces.Transcriber,
	translator interfaces.Translator,
	synthesizer interfaces.Synthesizer,
	cfg *config.Config,
	logger *zap.Logger,
) *pipelineService {
	return &pipelineService{
		agent:       agent,
		ocr:         ocr,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logger,
	}
}

// BuildPrompt renders the combined label-and-question prompt. The literal
// layout is part of the external contract: the model was tuned against
// exactly this shape.
func BuildPrompt(ocrText, userQuery string) string {
	return fmt.Sprintf(promptTemplate, ocrText, userQuery)
}

// TruncateAnswer cuts the answer to at most maxAnswerLength runes.
func TruncateAnswer(answer string) string {
	runes := []rune(answer)
	if len(runes) <= maxAnswerLength {
		return answer
	}
	return string(runes[:maxAnswerLength])
}

// Run sequences OCR, transcription, the reasoning run, translation and
// speech synthesis for one farmer query. Upstream extraction failures
// degrade to empty text; the reasoning run is bounded by the configured
// wall-clock timeout; the answer is truncated before translation so
// translated length never affects the cutoff.
func (s *pipelineService) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	if req.ImagePath == "" && req.AudioPath == "" {
		return nil, errs.ValidationErrorf("No valid input provided (voice or image)")
	}
	if req.SessionKey == "" {
		return nil, errs.ValidationErrorf("session key is required")
	}

	languages := req.Languages
	if len(languages) == 0 {
		languages = []string{config.DefaultLanguage}
	}
	for _, lang := range languages {
		if !config.SupportedLanguage(lang) {
			return nil, errs.ValidationErrorf("Unsupported language: %s", lang)
		}
	}

	var ocrText string
	if req.ImagePath != "" {
		text, err := s.ocr.ExtractText(ctx, req.ImagePath)
		if err != nil {
			s.logger.Warn("OCR extraction failed; continuing with empty label text",
				zap.String("image_path", req.ImagePath),
				zap.Error(err))
		} else {
			ocrText = text
		}
	}

	var userQuery string
	if req.AudioPath != "" {
		text, err := s.transcriber.Transcribe(ctx, req.AudioPath, languages[0])
		if err != nil || strings.TrimSpace(text) == "" {
			s.logger.Warn("Transcription failed; using default farmer query",
				zap.String("audio_path", req.AudioPath),
				zap.Error(err))
			userQuery = defaultFarmerQuery
		} else {
			userQuery = text
		}
	}

	if userQuery == "" {
		userQuery = defaultFarmerQuery
	}

	prompt := BuildPrompt(ocrText, userQuery)

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	var answer string
	runResult, err := s.agent.Run(runCtx, req.SessionKey, prompt)
	if err != nil {
		s.logger.Error("Agent run failed; using fallback answer",
			zap.String("session_key", req.SessionKey),
			zap.Error(err))
		answer = failureFallback
	} else {
		answer = runResult.FinalAnswer
		s.logger.Info("Agent run completed",
			zap.String("session_key", req.SessionKey),
			zap.Int("steps", runResult.Steps),
			zap.String("total_tokens", humanize.Comma(int64(runResult.Usage.TotalTokens))))
	}

	if strings.TrimSpace(answer) == "" {
		answer = emptyAnswerFallback
	}
	answer = TruncateAnswer(answer)

	voiceResponses := make(map[string]string, len(languages))
	for _, lang := range languages {
		text := answer
		if lang != config.DefaultLanguage {
			translated, err := s.translator.Translate(ctx, answer, config.DefaultLanguage, lang)
			if err != nil || strings.TrimSpace(translated) == "" {
				s.logger.Warn("Translation failed; synthesizing untranslated answer",
					zap.String("target_lang", lang),
					zap.Error(err))
			} else {
				text = translated
			}
		}

		path, err := s.synthesizer.Synthesize(ctx, text, lang, "agent_response")
		if err != nil {
			return nil, errs.InternalErrorf("speech synthesis failed for %s: %v", lang, err)
		}
		voiceResponses[lang] = path
	}

	return &PipelineResult{
		OCRText:        ocrText,
		Query:          userQuery,
		Answer:         answer,
		VoiceResponses: voiceResponses,
	}, nil
}

// verify interface implementation
var _ PipelineService = &pipelineService{}
