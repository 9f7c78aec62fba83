package media

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func mediaServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func tempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readUpload(t *testing.T, r *http.Request, field string) (string, *multipart.Form) {
	t.Helper()
	assert.NoError(t, r.ParseMultipartForm(1 << 20))
	files := r.MultipartForm.File[field]
	assert.Len(t, files, 1)
	f, err := files[0].Open()
	assert.NoError(t, err)
	defer f.Close()
	buf, err := io.ReadAll(f)
	assert.NoError(t, err)
	return string(buf), r.MultipartForm
}

func TestHTTPOCRExtractor(t *testing.T) {
	imagePath := tempFile(t, "label.jpg", "image-bytes")

	t.Run("extracts text", func(t *testing.T) {
		server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ocr", r.URL.Path)
			content, _ := readUpload(t, r, "file")
			assert.Equal(t, "image-bytes", content)
			json.NewEncoder(w).Encode(map[string]string{"text": "NPK 5-3-2"})
		})

		text, err := NewHTTPOCRExtractor(server.URL, zap.NewNop()).ExtractText(context.Background(), imagePath)

		assert.NoError(t, err)
		assert.Equal(t, "NPK 5-3-2", text)
	})

	t.Run("service failure surfaces", func(t *testing.T) {
		server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := NewHTTPOCRExtractor(server.URL, zap.NewNop()).ExtractText(context.Background(), imagePath)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewHTTPOCRExtractor("http://unused", zap.NewNop()).ExtractText(context.Background(), "no-such-image.jpg")
		assert.Error(t, err)
	})
}

func TestHTTPTranscriber(t *testing.T) {
	audioPath := tempFile(t, "question.wav", "audio-bytes")

	server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		_, form := readUpload(t, r, "file")
		assert.Equal(t, []string{"ur"}, form.Value["language"])
		json.NewEncoder(w).Encode(map[string]string{"text": "  Is this safe for wheat?  "})
	})

	text, err := NewHTTPTranscriber(server.URL, zap.NewNop()).Transcribe(context.Background(), audioPath, "ur")

	assert.NoError(t, err)
	assert.Equal(t, "Is this safe for wheat?", text)
}

func TestHTTPTranslator(t *testing.T) {
	server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["text"])
		assert.Equal(t, "en", payload["source_lang"])
		assert.Equal(t, "ur", payload["target_lang"])

		json.NewEncoder(w).Encode(map[string]string{"text": "ہیلو"})
	})

	text, err := NewHTTPTranslator(server.URL, zap.NewNop()).Translate(context.Background(), "hello", "en", "ur")

	assert.NoError(t, err)
	assert.Equal(t, "ہیلو", text)
}

func TestHTTPSynthesizer(t *testing.T) {
	outputDir := t.TempDir()

	t.Run("writes audio file", func(t *testing.T) {
		server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/synthesize", r.URL.Path)

			var payload map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "the answer", payload["text"])
			assert.Equal(t, "sd", payload["language"])

			w.Write([]byte("mp3-bytes"))
		})

		path, err := NewHTTPSynthesizer(server.URL, outputDir, zap.NewNop()).
			Synthesize(context.Background(), "the answer", "sd", "agent_response")

		assert.NoError(t, err)
		assert.Contains(t, filepath.Base(path), "agent_response_sd")

		written, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "mp3-bytes", string(written))
	})

	t.Run("service failure surfaces", func(t *testing.T) {
		server := mediaServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := NewHTTPSynthesizer(server.URL, outputDir, zap.NewNop()).
			Synthesize(context.Background(), "text", "en", "agent_response")
		assert.Error(t, err)
	})
}
