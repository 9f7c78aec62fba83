package entities

// RunState is the terminal state of one reasoning run.
type RunState string

const (
	RunAnswered RunState = "answered"
	RunFailed   RunState = "failed"
)

// Snapshot is the full message sequence as it exists after one
// reasoning-loop state transition.
type Snapshot []Message

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AgentRunResult carries the outcome of one reasoning run: the final
// answer text plus everything produced along the way for audit and
// debugging. The agent does not retain it after returning.
type AgentRunResult struct {
	FinalAnswer string
	Messages    []*Message
	Snapshots   []Snapshot
	Steps       int
	State       RunState
	Usage       Usage
}
