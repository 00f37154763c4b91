package core

import (
	"fmt"
	"sort"
	"strings"
)

// Role tags a prompt message for the backend.
type Role string

const (
	// RoleSystem carries the agent's standing instructions.
	RoleSystem Role = "system"
	// RoleUser carries the caller's input (and rendered context blocks).
	RoleUser Role = "user"
	// RoleAssistant carries prior model output when history is replayed.
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged element of a backend prompt. The model
// adapters map roles onto each vendor's wire format.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// SystemMessage builds a system-role message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Text: text} }

// UserMessage builds a user-role message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// AssistantMessage builds an assistant-role message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Text: text} }

// ContextMessage renders caller-supplied context as a user-role block.
// Keys are sorted so the rendered prompt is deterministic. Returns a zero
// Message and false when the context is empty.
func ContextMessage(context map[string]any) (Message, bool) {
	if len(context) == 0 {
		return Message{}, false
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, context[k])
	}
	return UserMessage(strings.TrimRight(b.String(), "\n")), true
}
