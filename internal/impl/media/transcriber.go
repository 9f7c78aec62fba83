package media

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// HTTPTranscriber posts a voice recording to an ASR service and returns
// the transcript.
type HTTPTranscriber struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPTranscriber(baseURL string, logger *zap.Logger) *HTTPTranscriber {
	return &HTTPTranscriber{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: mediaRequestTimeout},
		logger:     logger,
	}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	body, contentType, err := fileForm("file", audioPath, map[string]string{"language": language})
	if err != nil {
		return "", err
	}

	transcript, err := postForText(ctx, t.httpClient, t.baseURL+"/transcribe", contentType, body)
	if err != nil {
		return "", err
	}

	transcript = strings.TrimSpace(transcript)
	t.logger.Info("Transcription completed",
		zap.String("recording", filepath.Base(audioPath)),
		zap.String("language", language),
		zap.Int("transcript_length", len(transcript)))
	return transcript, nil
}

var _ interfaces.Transcriber = (*HTTPTranscriber)(nil)
