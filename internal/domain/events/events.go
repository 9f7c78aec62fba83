package events

import (
	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/kelindar/event"
)

// Event types
const (
	ToolCallEventType uint32 = 1
	RunStepEventType  uint32 = 2
)

// ToolCallEventData is published whenever the reasoning loop invokes a tool.
type ToolCallEventData struct {
	SessionID string
	ToolName  string
	Arguments string
	Result    string
}

// RunStepEventData is published after every reasoning-loop state
// transition with the accumulated message snapshot.
type RunStepEventData struct {
	SessionID string
	Step      int
	Snapshot  entities.Snapshot
}

// Type implements the Event interface
func (t ToolCallEventData) Type() uint32 {
	return ToolCallEventType
}

// Type implements the Event interface
func (r RunStepEventData) Type() uint32 {
	return RunStepEventType
}

// PublishToolCallEvent publishes a tool call event
func PublishToolCallEvent(sessionID, toolName, arguments, result string) {
	event.Emit(ToolCallEventData{
		SessionID: sessionID,
		ToolName:  toolName,
		Arguments: arguments,
		Result:    result,
	})
}

// SubscribeToToolCallEvents subscribes to tool call events
func SubscribeToToolCallEvents(handler func(data ToolCallEventData)) func() {
	return event.On(handler)
}

// PublishRunStepEvent publishes a reasoning-step snapshot event
func PublishRunStepEvent(sessionID string, step int, snapshot entities.Snapshot) {
	event.Emit(RunStepEventData{SessionID: sessionID, Step: step, Snapshot: snapshot})
}

// SubscribeToRunStepEvents subscribes to reasoning-step snapshot events
func SubscribeToRunStepEvents(handler func(data RunStepEventData)) func() {
	return event.On(handler)
}
