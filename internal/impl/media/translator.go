package media

import (
	"context"
	"net/http"

	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// HTTPTranslator translates text through a translation service.
type HTTPTranslator struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPTranslator(baseURL string, logger *zap.Logger) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: mediaRequestTimeout},
		logger:     logger,
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := jsonBody(map[string]string{
		"text":        text,
		"source_lang": sourceLang,
		"target_lang": targetLang,
	})
	if err != nil {
		return "", err
	}

	translated, err := postForText(ctx, t.httpClient, t.baseURL+"/translate", "application/json", body)
	if err != nil {
		return "", err
	}

	t.logger.Info("Translation completed",
		zap.String("source_lang", sourceLang),
		zap.String("target_lang", targetLang))
	return translated, nil
}

var _ interfaces.Translator = (*HTTPTranslator)(nil)
