package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"insurance-bot/internal/session"
)

// ErrService marks a failed chat service call. Failed turns are not
// recorded in the conversation history.
var ErrService = errors.New("ai service unavailable")

// systemPrompt pins the assistant to the insurance domain. It is sent as
// the first turn of every request rather than stored in history.
const systemPrompt = `You are CarInsuranceBot.
Answer only questions related to car insurance.
If the user asks something unrelated, politely say you can only help with car insurance.
Always be concise, clear, and user-friendly.`

// noReplyPlaceholder is returned when the service answers without any
// usable text parts. Not an error: the turn is still recorded.
const noReplyPlaceholder = "⚠️ No response from the assistant."

// Manager runs the AI side-channel for every user: it builds the prompt
// from the stored history, asks the chat service and records successful
// turns back into the session.
type Manager struct {
	client Client
	store  *session.Store

	// historyLimit caps how many stored turns go into the prompt window.
	// 0 sends everything; the stored history itself is never truncated.
	historyLimit int
}

// NewManager creates a conversation manager over the given client and store.
func NewManager(client Client, store *session.Store, historyLimit int) *Manager {
	return &Manager{client: client, store: store, historyLimit: historyLimit}
}

// Ask sends message for userID with the system prompt and the user's
// conversation history prepended. On success the user message and the
// sanitized reply are appended to history, in that order. On failure
// nothing is recorded and an ErrService-wrapped error is returned.
func (m *Manager) Ask(ctx context.Context, userID int64, message string) (string, error) {
	sess := m.store.Get(userID)
	window := sess.LastTurns(m.historyLimit)

	contents := make([]Content, 0, len(window)+2)
	contents = append(contents, Content{Role: RoleUser, Parts: []Part{{Text: systemPrompt}}})
	for _, turn := range window {
		role := RoleUser
		if turn.Role == session.RoleModel {
			role = RoleModel
		}
		contents = append(contents, Content{Role: role, Parts: []Part{{Text: turn.Text}}})
	}
	contents = append(contents, Content{Role: RoleUser, Parts: []Part{{Text: message}}})

	resp, err := m.client.Generate(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}

	reply := extractReply(resp)
	sess.Append(session.RoleUser, message)
	sess.Append(session.RoleModel, reply)
	return reply, nil
}

// extractReply pulls the answer text out of a response: the first
// candidate's first part, else all parts of the first candidate joined,
// else a fixed placeholder. Bold markers are stripped from the result.
func extractReply(resp *Response) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return noReplyPlaceholder
	}

	parts := resp.Candidates[0].Content.Parts
	var text string
	if len(parts) > 0 {
		text = strings.TrimSpace(parts[0].Text)
	}
	if text == "" {
		joined := make([]string, 0, len(parts))
		for _, p := range parts {
			if p.Text != "" {
				joined = append(joined, p.Text)
			}
		}
		text = strings.TrimSpace(strings.Join(joined, " "))
	}
	if text == "" {
		return noReplyPlaceholder
	}

	return strings.TrimSpace(strings.ReplaceAll(text, "**", ""))
}
