package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"science-helper/internal/domain"
)

// explanationReply is the JSON object the model is asked to return. Pointer
// fields tell a missing key apart from an empty answer.
type explanationReply struct {
	English       *string `json:"english"`
	DirectMarathi *string `json:"direct_marathi"`
	SimpleMarathi *string `json:"simple_marathi"`
}

func buildPromptMessages(sentence string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildTeacherPrompt()},
		{Role: domain.RoleUser, Content: buildSentencePrompt(sentence)},
	}
}

func buildTeacherPrompt() string {
	return strings.Join([]string{
		"Role:",
		"You are an expert school teacher and Marathi language specialist.",
		"",
		"Task:",
		"For the given English science sentence:",
		"- Translate it accurately into Marathi (textbook quality).",
		"- Explain the idea in very simple Marathi so a child can easily understand and remember it.",
		"",
		"Rules for Simple Marathi:",
		simpleMarathiRules(),
		"",
		"Output Contract:",
		outputContract(),
	}, "\n")
}

func simpleMarathiRules() string {
	return strings.Join([]string{
		"1) At most 2 short sentences.",
		"2) Use only easy Marathi.",
		"3) No English words.",
		"4) Explain the concept, not word-by-word.",
		"5) Sound like a teacher explaining in class.",
	}, "\n")
}

func outputContract() string {
	return "Return ONLY one valid JSON object with exactly these string keys: " +
		"english (the sentence exactly as given), direct_marathi (the textbook translation) " +
		"and simple_marathi (the simple explanation). No markdown, no extra keys, no text outside the object."
}

func buildSentencePrompt(sentence string) string {
	quoted, _ := json.Marshal(sentence)
	return "English sentence (JSON string):\n" + string(quoted)
}

// parseExplanation decodes an untrusted model reply. It only ever treats the
// reply as JSON data: one object, exactly the three declared string keys,
// nothing after it.
func parseExplanation(raw string) (explanationReply, error) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return explanationReply{}, errors.New("usecase: decode explanation: empty reply")
	}

	var out explanationReply
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return explanationReply{}, fmt.Errorf("usecase: decode explanation: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return explanationReply{}, errors.New("usecase: decode explanation: multiple JSON values")
		}
		return explanationReply{}, fmt.Errorf("usecase: decode explanation trailing data: %w", err)
	}

	var missing []string
	if out.English == nil {
		missing = append(missing, "english")
	}
	if out.DirectMarathi == nil {
		missing = append(missing, "direct_marathi")
	}
	if out.SimpleMarathi == nil {
		missing = append(missing, "simple_marathi")
	}
	if len(missing) > 0 {
		return explanationReply{}, fmt.Errorf("usecase: decode explanation: missing keys %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// stripCodeFence removes one enclosing ``` fence, with or without a language
// tag. Any other framing is left for the decoder to reject.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	nl := strings.IndexByte(inner, '\n')
	if nl < 0 {
		return strings.TrimSpace(inner)
	}
	if tag := strings.TrimSpace(inner[:nl]); tag != "" && !strings.EqualFold(tag, "json") {
		return s
	}
	return strings.TrimSpace(inner[nl+1:])
}
