// Package media implements the pipeline's external speech and vision
// collaborators as thin HTTP clients.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

const mediaRequestTimeout = 60 * time.Second

// HTTPOCRExtractor posts a product image to an OCR service and returns
// the recognized label text.
type HTTPOCRExtractor struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPOCRExtractor(baseURL string, logger *zap.Logger) *HTTPOCRExtractor {
	return &HTTPOCRExtractor{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: mediaRequestTimeout},
		logger:     logger,
	}
}

func (e *HTTPOCRExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	body, contentType, err := fileForm("file", imagePath, nil)
	if err != nil {
		return "", err
	}

	respBody, err := postForText(ctx, e.httpClient, e.baseURL+"/ocr", contentType, body)
	if err != nil {
		return "", err
	}

	e.logger.Info("OCR completed",
		zap.String("image", filepath.Base(imagePath)),
		zap.Int("text_length", len(respBody)))
	return respBody, nil
}

var _ interfaces.OCRExtractor = (*HTTPOCRExtractor)(nil)

// fileForm builds a multipart body with the file under fieldName plus
// any extra string fields.
func fileForm(fieldName, path string, fields map[string]string) (*bytes.Buffer, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", errs.ValidationErrorf("failed to open file %s: %v", path, err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, filepath.Base(path))
	if err != nil {
		return nil, "", errs.InternalErrorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", errs.InternalErrorf("failed to copy file into form: %v", err)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", errs.InternalErrorf("failed to write form field %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", errs.InternalErrorf("failed to finalize form: %v", err)
	}
	return body, writer.FormDataContentType(), nil
}

// postForText posts body and decodes a {"text": ...} response.
func postForText(ctx context.Context, client *http.Client, url, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		return "", errs.InternalErrorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return "", errs.InternalErrorf("request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.InternalErrorf("failed to read response from %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.InternalErrorf("%s returned status %d: %s", url, resp.StatusCode, string(respBytes))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", errs.InternalErrorf("failed to parse response from %s: %v", url, err)
	}
	return result.Text, nil
}

func jsonBody(payload any) (*bytes.Buffer, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.InternalErrorf("failed to encode request payload: %v", err)
	}
	return bytes.NewBuffer(data), nil
}

func uniqueFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_%d%s", prefix, time.Now().UnixNano(), ext)
}
