package interfaces

import (
	"context"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
)

// ModelReply is the outcome of a single chat-completion step: either a
// final content string or a set of requested tool calls.
type ModelReply struct {
	Content      string
	ToolCalls    []entities.ToolCall
	FinishReason string
	Usage        entities.Usage
}

// ModelIntegration is one reasoning-model provider. ChatCompletion
// performs exactly one model step; the reasoning loop above it decides
// whether to execute tool calls and go again.
type ModelIntegration interface {
	ModelName() string
	ChatCompletion(ctx context.Context, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*ModelReply, error)
}
