package domain

// ChatMessage is the provider-agnostic chat message shape used by the usecase
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is one text-generation call: a model, role-tagged messages and
// the sampling temperature.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
}

// SystemPrompt joins the content of all system messages.
func (r ChatRequest) SystemPrompt() string {
	var out string
	for _, m := range r.Messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}

// Conversation returns the non-system messages in order.
func (r ChatRequest) Conversation() []ChatMessage {
	out := make([]ChatMessage, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
