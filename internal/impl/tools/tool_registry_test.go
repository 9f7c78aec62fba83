package tools

import (
	"testing"

	"github.com/Ayesha86527/KisanDost/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestToolRegistry(t *testing.T) {
	registry := NewToolRegistry(zap.NewNop())
	search := NewWebSearchTool("key", zap.NewNop())

	t.Run("register and look up", func(t *testing.T) {
		assert.NoError(t, registry.RegisterTool(search))

		tool, err := registry.GetToolByName(WebSearchToolName)
		assert.NoError(t, err)
		assert.Equal(t, search, tool)
		assert.Len(t, registry.ListTools(), 1)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := registry.RegisterTool(NewWebSearchTool("other-key", zap.NewNop()))

		var validationErr *errs.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := registry.GetToolByName("missing_tool")

		var notFoundErr *errs.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}
