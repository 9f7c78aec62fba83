package interfaces

import "context"

// External pipeline collaborators. These are thin I/O contracts: the
// pipeline treats absent or failed upstream output as empty text and
// never blocks a run on it.

// OCRExtractor extracts label text from a product image.
// An empty string means no text was detected.
type OCRExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// Transcriber converts a farmer's voice recording to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Translator translates text between supported languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Synthesizer renders text to a voice artifact and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, filenamePrefix string) (string, error)
}
