package services

import (
	"testing"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func snapshot(messages ...entities.Message) entities.Snapshot {
	return entities.Snapshot(messages)
}

func TestExtractFinalAnswer(t *testing.T) {
	t.Run("no snapshots", func(t *testing.T) {
		assert.Equal(t, NoAnswerSentinel, ExtractFinalAnswer(nil))
		assert.Equal(t, NoAnswerSentinel, ExtractFinalAnswer([]entities.Snapshot{}))
	})

	t.Run("no assistant message", func(t *testing.T) {
		snapshots := []entities.Snapshot{
			snapshot(
				entities.Message{Role: entities.RoleSystem, Content: "persona"},
				entities.Message{Role: entities.RoleUser, Content: "question"},
			),
		}
		assert.Equal(t, NoAnswerSentinel, ExtractFinalAnswer(snapshots))
	})

	t.Run("last assistant message wins", func(t *testing.T) {
		snapshots := []entities.Snapshot{
			snapshot(
				entities.Message{Role: entities.RoleUser, Content: "question"},
				entities.Message{Role: entities.RoleAssistant, Content: "first draft"},
			),
			snapshot(
				entities.Message{Role: entities.RoleUser, Content: "question"},
				entities.Message{Role: entities.RoleAssistant, Content: "first draft"},
				entities.Message{Role: entities.RoleUser, Content: "follow up"},
				entities.Message{Role: entities.RoleAssistant, Content: "final answer"},
			),
		}
		assert.Equal(t, "final answer", ExtractFinalAnswer(snapshots))
	})

	t.Run("accepts ai role spelling", func(t *testing.T) {
		snapshots := []entities.Snapshot{
			snapshot(
				entities.Message{Role: entities.RoleUser, Content: "question"},
				entities.Message{Role: entities.RoleAI, Content: "answer from ai role"},
			),
		}
		assert.Equal(t, "answer from ai role", ExtractFinalAnswer(snapshots))
	})

	t.Run("skips tool call announcements", func(t *testing.T) {
		call := entities.ToolCall{ID: "call-1", Type: "function"}
		call.Function.Name = "web_search_tool"

		snapshots := []entities.Snapshot{
			snapshot(
				entities.Message{Role: entities.RoleAssistant, Content: "real answer"},
				entities.Message{Role: entities.RoleAssistant, Content: "Executing web_search_tool tool", ToolCalls: []entities.ToolCall{call}},
				entities.Message{Role: entities.RoleTool, Content: "observation", ToolCallID: "call-1"},
			),
		}
		assert.Equal(t, "real answer", ExtractFinalAnswer(snapshots))
	})

	t.Run("skips empty assistant content", func(t *testing.T) {
		snapshots := []entities.Snapshot{
			snapshot(
				entities.Message{Role: entities.RoleAssistant, Content: "useful"},
				entities.Message{Role: entities.RoleAssistant, Content: ""},
			),
		}
		assert.Equal(t, "useful", ExtractFinalAnswer(snapshots))
	})

	t.Run("falls back to earlier snapshot", func(t *testing.T) {
		snapshots := []entities.Snapshot{
			snapshot(entities.Message{Role: entities.RoleAssistant, Content: "older answer"}),
			snapshot(entities.Message{Role: entities.RoleUser, Content: "newer question"}),
		}
		assert.Equal(t, "older answer", ExtractFinalAnswer(snapshots))
	})
}
