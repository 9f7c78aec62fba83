package services

import (
	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
)

// NoAnswerSentinel is returned when a run produced no assistant-authored
// answer. Downstream stages (translation, speech synthesis) detect the
// no-answer case textually; the extractor never returns an empty string.
const NoAnswerSentinel = "No answer produced by agent."

// ExtractFinalAnswer scans the run's snapshots newest-first and returns
// the content of the last assistant-authored final answer. Messages that
// merely announce tool calls do not count, and both the "assistant" and
// "ai" role spellings are accepted.
func ExtractFinalAnswer(snapshots []entities.Snapshot) string {
	for i := len(snapshots) - 1; i >= 0; i-- {
		messages := snapshots[i]
		for j := len(messages) - 1; j >= 0; j-- {
			msg := messages[j]
			if msg.Role.IsAssistant() && len(msg.ToolCalls) == 0 && msg.Content != "" {
				return msg.Content
			}
		}
	}
	return NoAnswerSentinel
}
