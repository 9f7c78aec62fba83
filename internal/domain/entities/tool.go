package entities

type Parameter struct {
	Name        string
	Type        string
	Enum        []string
	Description string
	Required    bool
}

// Tool is a named capability the reasoning loop may invoke mid-run.
// Execute receives the model's arguments as a JSON string and returns a
// text observation; recoverable provider failures should be reported in
// the returned text rather than as an error.
type Tool interface {
	Name() string
	Description() string
	Parameters() []Parameter
	Execute(arguments string) (string, error)
}
