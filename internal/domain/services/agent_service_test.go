package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Mock model integration for testing
type mockModelIntegration struct {
	mock.Mock
}

func (m *mockModelIntegration) ModelName() string {
	return "mock-model"
}

func (m *mockModelIntegration) ChatCompletion(ctx context.Context, messages []*entities.Message, tools []entities.Tool, options map[string]any) (*interfaces.ModelReply, error) {
	args := m.Called(ctx, messages, tools, options)
	if args.Get(0) != nil {
		return args.Get(0).(*interfaces.ModelReply), args.Error(1)
	}
	return nil, args.Error(1)
}

// Mock session repository for testing
type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) GetMessages(ctx context.Context, sessionKey string) ([]entities.Message, error) {
	args := m.Called(ctx, sessionKey)
	if args.Get(0) != nil {
		return args.Get(0).([]entities.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepository) AppendMessages(ctx context.Context, sessionKey string, messages []*entities.Message) error {
	args := m.Called(ctx, sessionKey, messages)
	return args.Error(0)
}

// Mock tool registry backed by a plain map
type mockToolRegistry struct {
	tools map[string]entities.Tool
}

func newMockToolRegistry(toolSet ...entities.Tool) *mockToolRegistry {
	r := &mockToolRegistry{tools: make(map[string]entities.Tool)}
	for _, tool := range toolSet {
		r.tools[tool.Name()] = tool
	}
	return r
}

func (r *mockToolRegistry) RegisterTool(tool entities.Tool) error {
	r.tools[tool.Name()] = tool
	return nil
}

func (r *mockToolRegistry) GetToolByName(name string) (entities.Tool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, errs.NotFoundErrorf("tool with name '%s' not found", name)
	}
	return tool, nil
}

func (r *mockToolRegistry) ListTools() []entities.Tool {
	tools := make([]entities.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// Stub tool that records how often it ran
type stubTool struct {
	name   string
	result string
	calls  int
}

func (t *stubTool) Name() string                     { return t.name }
func (t *stubTool) Description() string              { return "stub" }
func (t *stubTool) Parameters() []entities.Parameter { return nil }
func (t *stubTool) Execute(arguments string) (string, error) {
	t.calls++
	return t.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Temperature: 0.3,
		MaxTokens:   1500,
		RunTimeout:  time.Minute,
	}
}

func searchToolCall(id, query string) entities.ToolCall {
	call := entities.ToolCall{ID: id, Type: "function"}
	call.Function.Name = "web_search_tool"
	call.Function.Arguments = fmt.Sprintf(`{"query": %q}`, query)
	return call
}

func contentReply(content string) *interfaces.ModelReply {
	return &interfaces.ModelReply{
		Content:      content,
		FinishReason: "stop",
		Usage:        entities.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func toolCallReply(calls ...entities.ToolCall) *interfaces.ModelReply {
	return &interfaces.ModelReply{
		ToolCalls:    calls,
		FinishReason: "tool_calls",
		Usage:        entities.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func TestAgentService_Run_DirectAnswer(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(contentReply("Yes, this fertilizer is safe for wheat."), nil).Once()
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "Is this safe for wheat?")

	assert.NoError(t, err)
	assert.Equal(t, entities.RunAnswered, result.State)
	assert.Equal(t, 1, result.Steps)
	assert.Equal(t, "Yes, this fertilizer is safe for wheat.", result.FinalAnswer)
	assert.Equal(t, 15, result.Usage.TotalTokens)
	mockRepo.AssertExpectations(t)
	mockModel.AssertExpectations(t)
}

func TestAgentService_Run_ToolThenAnswer(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	search := &stubTool{name: "web_search_tool", result: "URL: x\nTitle: y\nContent: z\n---"}
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(search), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(toolCallReply(searchToolCall("call-1", "NPK 5-3-2 wheat safety")), nil).Once()
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(contentReply("Apply 2-3 kg per acre before irrigation."), nil).Once()
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "How often should I apply it?")

	assert.NoError(t, err)
	assert.Equal(t, entities.RunAnswered, result.State)
	assert.Equal(t, 2, result.Steps)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, "Apply 2-3 kg per acre before irrigation.", result.FinalAnswer)

	// user, tool-call assistant, tool result, final assistant
	assert.Len(t, result.Messages, 4)
	assert.Equal(t, entities.RoleTool, result.Messages[2].Role)
	assert.Equal(t, "call-1", result.Messages[2].ToolCallID)
	mockModel.AssertExpectations(t)
}

func TestAgentService_Run_ToolCallCap(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	search := &stubTool{name: "web_search_tool", result: "No relevant results found."}
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(search), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(toolCallReply(searchToolCall("call-1", "first")), nil).Once()
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(toolCallReply(searchToolCall("call-2", "second")), nil).Once()
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(contentReply("Final answer."), nil).Once()
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "question")

	assert.NoError(t, err)
	assert.Equal(t, 1, search.calls, "second call must be rejected by the cap")

	var capObservation string
	for _, msg := range result.Messages {
		if msg.Role == entities.RoleTool && msg.ToolCallID == "call-2" {
			capObservation = msg.Content
		}
	}
	assert.Contains(t, capObservation, "already been used")
}

func TestAgentService_Run_StepCap(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	search := &stubTool{name: "web_search_tool", result: "result"}
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(search), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	// The model never stops asking for the tool.
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(toolCallReply(searchToolCall("call-n", "loop")), nil)
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "question")

	assert.NoError(t, err)
	assert.Equal(t, maxReasoningSteps, result.Steps)
	assert.Equal(t, NoAnswerSentinel, result.FinalAnswer)
	mockModel.AssertNumberOfCalls(t, "ChatCompletion", maxReasoningSteps)
}

func TestAgentService_Run_ModelError(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection refused"))

	result, err := service.Run(ctx, "session-1", "question")

	assert.Error(t, err)
	var modelErr *errs.ModelError
	assert.ErrorAs(t, err, &modelErr)
	assert.Equal(t, entities.RunFailed, result.State)
	// Nothing persisted for a failed run.
	mockRepo.AssertNotCalled(t, "AppendMessages", mock.Anything, mock.Anything, mock.Anything)
}

func TestAgentService_Run_Validation(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	ctx := context.Background()

	t.Run("empty session key", func(t *testing.T) {
		_, err := service.Run(ctx, "", "question")
		var validationErr *errs.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := service.Run(ctx, "session-1", "")
		var validationErr *errs.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestAgentService_Run_UnknownTool(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(), mockRepo, testConfig(), logger)
	assert.NoError(t, err)

	badCall := entities.ToolCall{ID: "call-1", Type: "function"}
	badCall.Function.Name = "no_such_tool"
	badCall.Function.Arguments = "{}"

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return([]entities.Message{}, nil)
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(toolCallReply(badCall), nil).Once()
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(contentReply("Done."), nil).Once()
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "question")

	assert.NoError(t, err)
	assert.Equal(t, "Tool no_such_tool not found", result.Messages[2].Content)
	assert.Equal(t, "Done.", result.FinalAnswer)
}

func TestAgentService_Run_BoundsConversationToContextWindow(t *testing.T) {
	mockModel := new(mockModelIntegration)
	mockRepo := new(mockSessionRepository)
	logger := zap.NewNop()

	service, err := NewAgentService(mockModel, newMockToolRegistry(), mockRepo, testConfig(), logger)
	assert.NoError(t, err)
	// Shrink the window so a modest history overflows the budget.
	service.contextWindow = 2000

	history := make([]entities.Message, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history, *entities.NewMessage(entities.RoleUser, strings.Repeat("wheat fertilizer dosage ", 50)))
	}

	ctx := context.Background()
	mockRepo.On("GetMessages", ctx, "session-1").Return(history, nil)

	var sent []*entities.Message
	mockModel.On("ChatCompletion", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).([]*entities.Message)
		}).
		Return(contentReply("answer"), nil).Once()
	mockRepo.On("AppendMessages", ctx, "session-1", mock.Anything).Return(nil)

	result, err := service.Run(ctx, "session-1", "latest question")

	assert.NoError(t, err)
	assert.Equal(t, "answer", result.FinalAnswer)
	// Oldest history turns were dropped before the model call.
	assert.Less(t, len(sent), len(history)+2)
	assert.GreaterOrEqual(t, len(sent), 2)
	assert.Equal(t, entities.RoleSystem, sent[0].Role)
	assert.Equal(t, "latest question", sent[len(sent)-1].Content)
}

func TestNewAgentService_RequiresCollaborators(t *testing.T) {
	logger := zap.NewNop()

	_, err := NewAgentService(nil, newMockToolRegistry(), new(mockSessionRepository), testConfig(), logger)
	assert.Error(t, err)

	_, err = NewAgentService(new(mockModelIntegration), nil, new(mockSessionRepository), testConfig(), logger)
	assert.Error(t, err)

	_, err = NewAgentService(new(mockModelIntegration), newMockToolRegistry(), nil, testConfig(), logger)
	assert.Error(t, err)
}
