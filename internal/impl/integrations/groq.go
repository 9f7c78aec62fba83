package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// GroqIntegration talks to Groq's OpenAI-compatible chat-completions API.
// One call is one reasoning step: the reply carries either final content
// or the tool calls the model wants executed.
type GroqIntegration struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	model      string
	logger     *zap.Logger
}

func NewGroqIntegration(baseURL, apiKey, model string, logger *zap.Logger) (*GroqIntegration, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	return &GroqIntegration{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 300 * time.Second},
		model:      model,
		logger:     logger,
	}, nil
}

// ModelName returns the name of the model being used
func (m *GroqIntegration) ModelName() string {
	return m.model
}

// convertToAPIMessages converts message entities to the chat-completions
// wire format. The "ai" role spelling maps to "assistant" on the wire.
func convertToAPIMessages(messages []*entities.Message) []map[string]any {
	apiMessages := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		role := string(msg.Role)
		if msg.Role == entities.RoleAI {
			role = string(entities.RoleAssistant)
		}
		apiMsg := map[string]any{
			"role": role,
		}
		if msg.Role.IsAssistant() && len(msg.ToolCalls) > 0 {
			apiMsg["tool_calls"] = msg.ToolCalls

			if msg.Content == "" {
				apiMsg["content"] = "Executing tool call."
			} else {
				apiMsg["content"] = msg.Content
			}
		} else {
			apiMsg["content"] = msg.Content
			if msg.Role == entities.RoleTool {
				apiMsg["tool_call_id"] = msg.ToolCallID
			}
		}
		apiMessages = append(apiMessages, apiMsg)
	}
	return apiMessages
}

func convertToolDefinitions(toolList []entities.Tool) []map[string]any {
	tools := make([]map[string]any, len(toolList))
	for i, tool := range toolList {
		requiredFields := make([]string, 0)
		for _, param := range tool.Parameters() {
			if param.Required {
				requiredFields = append(requiredFields, param.Name)
			}
		}

		properties := make(map[string]any)
		for _, param := range tool.Parameters() {
			property := map[string]any{
				"type":        param.Type,
				"description": param.Description,
			}
			if len(param.Enum) > 0 {
				property["enum"] = param.Enum
			}
			properties[param.Name] = property
		}

		tools[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.Name(),
				"description": tool.Description(),
				"parameters": map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   requiredFields,
				},
			},
		}
	}
	return tools
}

// ChatCompletion performs one model step. Transient transport failures
// and 429 responses are retried up to three times here in the client;
// any error that still surfaces is fatal to the run, and the reasoning
// loop above performs no retry of its own.
func (m *GroqIntegration) ChatCompletion(ctx context.Context, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*interfaces.ModelReply, error) {
	reqBody := map[string]any{
		"model": m.model,
	}
	if len(tools) > 0 {
		reqBody["tools"] = convertToolDefinitions(tools)
	}
	for key, value := range options {
		reqBody[key] = value
	}
	reqBody["messages"] = convertToAPIMessages(messages)

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	var resp *http.Response
	for attempt := 0; attempt < 3; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL, bytes.NewBuffer(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("error creating request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+m.apiKey)

		resp, err = m.httpClient.Do(req)
		if err != nil {
			if attempt < 2 {
				m.logger.Warn("Error making request, retrying", zap.Error(err))
				time.Sleep(time.Duration(attempt+1) * time.Second)
				continue
			}
			return nil, fmt.Errorf("error making request: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt < 2 {
				time.Sleep(time.Duration(attempt+1) * time.Second)
				continue
			}
			return nil, fmt.Errorf("rate limit exceeded")
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			m.logger.Error("Unexpected status code", zap.Int("status", resp.StatusCode), zap.String("body", string(body)))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
		break
	}
	defer resp.Body.Close()

	var responseBody struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content   string              `json:"content"`
				ToolCalls []entities.ToolCall `json:"tool_calls,omitempty"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("error decoding response: %v", err)
	}
	if len(responseBody.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := responseBody.Choices[0]
	return &interfaces.ModelReply{
		Content:      choice.Message.Content,
		ToolCalls:    choice.Message.ToolCalls,
		FinishReason: choice.FinishReason,
		Usage: entities.Usage{
			PromptTokens:     responseBody.Usage.PromptTokens,
			CompletionTokens: responseBody.Usage.CompletionTokens,
			TotalTokens:      responseBody.Usage.TotalTokens,
		},
	}, nil
}

// Ensure GroqIntegration implements the ModelIntegration interface
var _ interfaces.ModelIntegration = (*GroqIntegration)(nil)
