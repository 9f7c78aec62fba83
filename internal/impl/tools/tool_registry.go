package tools

import (
	"sync"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// ToolRegistry holds the tool set for one agent instance, keyed by the
// unique tool name.
type ToolRegistry struct {
	mu     sync.RWMutex
	tools  map[string]entities.Tool
	logger *zap.Logger
}

func NewToolRegistry(logger *zap.Logger) *ToolRegistry {
	return &ToolRegistry{
		tools:  make(map[string]entities.Tool),
		logger: logger,
	}
}

func (r *ToolRegistry) RegisterTool(tool entities.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name()]; exists {
		return errs.ValidationErrorf("tool with name '%s' already registered", tool.Name())
	}
	r.tools[tool.Name()] = tool
	r.logger.Info("Registered tool", zap.String("tool_name", tool.Name()))
	return nil
}

func (r *ToolRegistry) GetToolByName(name string) (entities.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, errs.NotFoundErrorf("tool with name '%s' not found", name)
	}
	return tool, nil
}

func (r *ToolRegistry) ListTools() []entities.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]entities.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

var _ interfaces.ToolRegistry = (*ToolRegistry)(nil)
