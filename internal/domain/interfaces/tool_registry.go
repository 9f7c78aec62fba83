package interfaces

import (
	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
)

// ToolRegistry holds the tool set exposed to one agent instance.
// Tool names are unique within a registry.
type ToolRegistry interface {
	RegisterTool(tool entities.Tool) error
	GetToolByName(name string) (entities.Tool, error)
	ListTools() []entities.Tool
}
