package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output is the single JSON document written to stdout. Continue is always
// true: a notification failure must never halt the host assistant.
type Output struct {
	Continue       bool   `json:"continue"`
	SuppressOutput bool   `json:"suppressOutput,omitempty"`
	SystemMessage  string `json:"systemMessage,omitempty"`
}

// ContinueOutput is the safe default response.
func ContinueOutput() Output {
	return Output{Continue: true}
}

// Summarize folds per-notifier success counts into an Output. The system
// message is only set when at least one notifier failed.
func Summarize(succeeded, total int) Output {
	out := Output{Continue: true, SuppressOutput: true}
	if succeeded != total {
		out.SystemMessage = fmt.Sprintf("Notifications: %d/%d succeeded", succeeded, total)
	}
	return out
}

// Write encodes the output as one JSON line.
func (o Output) Write(w io.Writer) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal hook output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
