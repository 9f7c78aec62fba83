package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// HTTPSynthesizer renders text to speech through a TTS service and
// writes the returned audio under outputDir.
type HTTPSynthesizer struct {
	baseURL    string
	outputDir  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPSynthesizer(baseURL, outputDir string, logger *zap.Logger) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL:    baseURL,
		outputDir:  outputDir,
		httpClient: &http.Client{Timeout: mediaRequestTimeout},
		logger:     logger,
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, language, filenamePrefix string) (string, error) {
	body, err := jsonBody(map[string]string{
		"text":     text,
		"language": language,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/synthesize", body)
	if err != nil {
		return "", errs.InternalErrorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errs.InternalErrorf("speech synthesis request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(resp.Body)
		return "", errs.InternalErrorf("speech synthesis returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	outputPath := filepath.Join(s.outputDir, uniqueFilename(fmt.Sprintf("%s_%s", filenamePrefix, language), ".mp3"))
	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", errs.InternalErrorf("failed to create audio file %s: %v", outputPath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return "", errs.InternalErrorf("failed to write audio file %s: %v", outputPath, err)
	}

	s.logger.Info("Voice response generated",
		zap.String("language", language),
		zap.String("path", outputPath))
	return outputPath, nil
}

var _ interfaces.Synthesizer = (*HTTPSynthesizer)(nil)
