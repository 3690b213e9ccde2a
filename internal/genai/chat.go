package genai

import (
	"context"
	"strings"
	"sync"
)

const chatSystemPrompt = `You are a friendly reading buddy for children. Keep answers short, kind and simple. Never discuss unsafe topics; steer back to stories and reading.`

// Chat is a multi-turn conversation. History grows with every exchange and is
// replayed in full on each request; the provider itself is stateless.
type Chat struct {
	client *Client

	mu      sync.Mutex
	history []content
}

// NewChat starts a conversation
func (c *Client) NewChat() *Chat {
	return &Chat{client: c}
}

// Send adds the user message to the conversation and returns the reply.
func (ch *Chat) Send(ctx context.Context, message string) (string, error) {
	ch.mu.Lock()
	history := make([]content, len(ch.history))
	copy(history, ch.history)
	ch.mu.Unlock()

	turn := content{Role: "user", Parts: []part{{Text: strings.TrimSpace(message)}}}

	payload := map[string]any{
		"systemInstruction": content{Parts: []part{{Text: chatSystemPrompt}}},
		"contents":          append(history, turn),
	}

	resp, err := ch.client.generate(ctx, ch.client.textModel, payload)
	if err != nil {
		return "", err
	}
	reply, err := resp.firstText()
	if err != nil {
		return "", err
	}

	ch.mu.Lock()
	ch.history = append(ch.history, turn, content{Role: "model", Parts: []part{{Text: reply}}})
	ch.mu.Unlock()

	return reply, nil
}

// Think answers a hard question with extended reasoning enabled.
func (c *Client) Think(ctx context.Context, question string) (string, error) {
	payload := map[string]any{
		"contents": userContent(strings.TrimSpace(question)),
		"generationConfig": map[string]any{
			"thinkingConfig": map[string]any{
				"thinkingBudget": 8192,
			},
		},
	}

	resp, err := c.generate(ctx, c.textModel, payload)
	if err != nil {
		return "", err
	}
	return resp.firstText()
}
