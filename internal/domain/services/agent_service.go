package services

import (
	"context"
	"fmt"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/events"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// systemPrompt fixes the assistant's persona. The "once" instruction on
// the search tool is advisory for the model; the mechanical enforcement
// is the per-tool call cap in the run loop.
const systemPrompt = "You are a helpful agricultural assistant for farmers in Pakistan. " +
	"You explain the usage, safety, and crop compatibility of agricultural " +
	"chemicals like pesticides, herbicides, and fertilizers.\n\n" +
	"If you are unsure, use the web_search_tool once to check reliable sources. " +
	"Keep your answer short, clear, and practical."

const (
	// maxReasoningSteps bounds model invocations per run regardless of
	// model cooperation.
	maxReasoningSteps = 8
	// maxCallsPerTool bounds invocations of any single tool per run.
	maxCallsPerTool = 1

	defaultContextWindow = 128000
)

type AgentService interface {
	Run(ctx context.Context, sessionKey, userInput string) (*entities.AgentRunResult, error)
}

type agentService struct {
	model         interfaces.ModelIntegration
	tools         interfaces.ToolRegistry
	sessionRepo   interfaces.SessionRepository
	cfg           *config.Config
	logger        *zap.Logger
	contextWindow int
}

func NewAgentService(
	model interfaces.ModelIntegration,
	tools interfaces.ToolRegistry,
	sessionRepo interfaces.SessionRepository,
	cfg *config.Config,
	logger *zap.Logger,
) (*agentService, error) {
	if model == nil {
		return nil, errs.ValidationErrorf("model integration is required")
	}
	if tools == nil {
		return nil, errs.ValidationErrorf("tool registry is required")
	}
	if sessionRepo == nil {
		return nil, errs.ValidationErrorf("session repository is required")
	}
	return &agentService{
		model:         model,
		tools:         tools,
		sessionRepo:   sessionRepo,
		cfg:           cfg,
		logger:        logger,
		contextWindow: defaultContextWindow,
	}, nil
}

// Run drives one reasoning run for the session: think, optionally execute
// the requested tool calls, think again, until the model produces a final
// answer or the step cap is hit. The session's prior history is loaded
// from the repository and the turn's messages are appended back on
// success; a failed run persists nothing so the caller can retry it
// whole.
func (s *agentService) Run(ctx context.Context, sessionKey, userInput string) (*entities.AgentRunResult, error) {
	if sessionKey == "" {
		return nil, errs.ValidationErrorf("session key is required")
	}
	if userInput == "" {
		return nil, errs.ValidationErrorf("user input is required")
	}

	history, err := s.sessionRepo.GetMessages(ctx, sessionKey)
	if err != nil {
		return nil, errs.InternalErrorf("failed to load session history: %v", err)
	}

	userMessage := entities.NewMessage(entities.RoleUser, userInput)

	conversation := make([]*entities.Message, 0, len(history)+2)
	conversation = append(conversation, entities.NewMessage(entities.RoleSystem, systemPrompt))
	for i := range history {
		msg := history[i]
		conversation = append(conversation, &msg)
	}
	conversation = append(conversation, userMessage)

	result := &entities.AgentRunResult{State: entities.RunFailed}
	result.Messages = append(result.Messages, userMessage)
	s.emitSnapshot(sessionKey, result, conversation)

	toolSet := s.tools.ListTools()
	toolCallCounts := make(map[string]int)
	options := map[string]any{
		"temperature": s.cfg.Temperature,
		"max_tokens":  s.cfg.MaxTokens,
	}

	answered := false
	for step := 1; step <= maxReasoningSteps && !answered; step++ {
		result.Steps = step
		s.logger.Debug("Reasoning step",
			zap.String("session_key", sessionKey),
			zap.Int("step", step))

		conversation = s.boundConversation(conversation)

		reply, err := s.model.ChatCompletion(ctx, conversation, toolSet, options)
		if err != nil {
			s.logger.Error("Model invocation failed",
				zap.String("session_key", sessionKey),
				zap.Int("step", step),
				zap.Error(err))
			return result, errs.ModelErrorf("failed to generate AI response: %v", err)
		}

		result.Usage.PromptTokens += reply.Usage.PromptTokens
		result.Usage.CompletionTokens += reply.Usage.CompletionTokens
		result.Usage.TotalTokens += reply.Usage.TotalTokens

		if len(reply.ToolCalls) == 0 {
			finalMessage := entities.NewMessage(entities.RoleAssistant, reply.Content)
			conversation = append(conversation, finalMessage)
			result.Messages = append(result.Messages, finalMessage)
			s.emitSnapshot(sessionKey, result, conversation)
			answered = true
			break
		}

		toolCallMessage := entities.NewMessage(entities.RoleAssistant,
			fmt.Sprintf("Executing %s tool with arguments: %s",
				reply.ToolCalls[0].Function.Name, reply.ToolCalls[0].Function.Arguments))
		toolCallMessage.ToolCalls = reply.ToolCalls
		conversation = append(conversation, toolCallMessage)
		result.Messages = append(result.Messages, toolCallMessage)
		s.emitSnapshot(sessionKey, result, conversation)

		for _, toolCall := range reply.ToolCalls {
			if toolCall.Type != "" && toolCall.Type != "function" {
				continue
			}
			toolName := toolCall.Function.Name
			observation := s.executeToolCall(toolName, toolCall.Function.Arguments, toolCallCounts)
			events.PublishToolCallEvent(sessionKey, toolName, toolCall.Function.Arguments, observation)

			toolMessage := entities.NewToolResultMessage(toolCall.ID, observation)
			conversation = append(conversation, toolMessage)
			result.Messages = append(result.Messages, toolMessage)
			s.emitSnapshot(sessionKey, result, conversation)
		}
	}

	result.State = entities.RunAnswered
	result.FinalAnswer = ExtractFinalAnswer(result.Snapshots)

	if err := s.sessionRepo.AppendMessages(ctx, sessionKey, result.Messages); err != nil {
		s.logger.Warn("Failed to persist run messages",
			zap.String("session_key", sessionKey),
			zap.Error(err))
	}

	return result, nil
}

// executeToolCall resolves and runs one tool call. Every failure mode
// becomes observation text the model can read; the loop never aborts on a
// tool problem.
func (s *agentService) executeToolCall(toolName, arguments string, counts map[string]int) string {
	tool, err := s.tools.GetToolByName(toolName)
	if err != nil {
		s.logger.Warn("Tool not found", zap.String("tool_name", toolName), zap.Error(err))
		return fmt.Sprintf("Tool %s not found", toolName)
	}

	if counts[toolName] >= maxCallsPerTool {
		s.logger.Info("Tool call cap reached",
			zap.String("tool_name", toolName),
			zap.Int("calls", counts[toolName]))
		return fmt.Sprintf("Tool %s has already been used for this question. Answer with the information already gathered.", toolName)
	}
	counts[toolName]++

	result, err := tool.Execute(arguments)
	if err != nil {
		s.logger.Error("Tool execution failed", zap.String("tool_name", toolName), zap.Error(err))
		return fmt.Sprintf("Tool %s execution failed: %v", toolName, err)
	}
	return result
}

func (s *agentService) emitSnapshot(sessionKey string, result *entities.AgentRunResult, conversation []*entities.Message) {
	snapshot := make(entities.Snapshot, 0, len(conversation))
	for _, msg := range conversation {
		snapshot = append(snapshot, *msg)
	}
	result.Snapshots = append(result.Snapshots, snapshot)
	events.PublishRunStepEvent(sessionKey, len(result.Snapshots), snapshot)
}

// boundConversation drops the oldest turns after the system prompt until
// the estimated conversation size fits the context window minus the
// reply reservation. The system prompt and the newest message are never
// dropped.
func (s *agentService) boundConversation(conversation []*entities.Message) []*entities.Message {
	budget := s.contextWindow - s.cfg.MaxTokens

	total := 0
	for _, msg := range conversation {
		total += estimateTokens(msg.Content)
	}
	if total <= budget {
		return conversation
	}

	dropped := 0
	for total > budget && len(conversation)-dropped > 2 {
		total -= estimateTokens(conversation[1+dropped].Content)
		dropped++
	}
	if dropped == 0 {
		return conversation
	}

	s.logger.Warn("Conversation exceeds context window; dropping oldest turns",
		zap.Int("dropped_messages", dropped),
		zap.Int("estimated_tokens", total))

	bounded := make([]*entities.Message, 0, len(conversation)-dropped)
	bounded = append(bounded, conversation[0])
	bounded = append(bounded, conversation[1+dropped:]...)
	return bounded
}

func estimateTokens(content string) int {
	enc, err := tiktoken.EncodingForModel("gpt-4")
	if err != nil {
		// Rough approximation, about four characters per token.
		return len(content) / 4
	}

	tokens := enc.Encode(content, nil, nil)

	return len(tokens)
}

// verify interface implementation
var _ AgentService = &agentService{}
