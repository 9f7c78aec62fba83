package entities

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message. The reasoning loop may surface
// assistant-authored messages as either "assistant" or "ai" depending on
// the producer, so consumers should check IsAssistant rather than compare
// against a single value.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleAI        Role = "ai"
	RoleTool      Role = "tool"
)

// IsAssistant reports whether the role denotes an assistant-authored message.
func (r Role) IsAssistant() bool {
	return r == RoleAssistant || r == RoleAI
}

type ToolCall struct {
	ID       string `json:"id" bson:"id"`
	Type     string `json:"type" bson:"type"`
	Function struct {
		Name      string `json:"name" bson:"name"`
		Arguments string `json:"arguments" bson:"arguments"`
	} `json:"function" bson:"function"`
}

// Message is one entry in a session's append-only conversation history.
// A tool-result message carries the ToolCallID of the tool call it answers.
type Message struct {
	ID         string     `json:"id" bson:"id"`
	Role       Role       `json:"role" bson:"role"`
	Content    string     `json:"content" bson:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty" bson:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty" bson:"tool_call_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp" bson:"timestamp"`
}

func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewToolResultMessage links a tool's output back to the call that produced it.
func NewToolResultMessage(toolCallID, content string) *Message {
	msg := NewMessage(RoleTool, content)
	msg.ToolCallID = toolCallID
	return msg
}
