package genai

import (
	"context"
	"strings"
)

// Source is one grounding reference behind a search answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundedAnswer is a search-backed reply with its sources.
type GroundedAnswer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// GroundedSearch answers a question using live web search and returns the
// sources the answer is grounded on.
func (c *Client) GroundedSearch(ctx context.Context, query string) (*GroundedAnswer, error) {
	return c.grounded(ctx, query, map[string]any{"google_search": map[string]any{}})
}

// GroundedMapsSearch answers a place-related question grounded on maps data.
func (c *Client) GroundedMapsSearch(ctx context.Context, query string) (*GroundedAnswer, error) {
	return c.grounded(ctx, query, map[string]any{"google_maps": map[string]any{}})
}

func (c *Client) grounded(ctx context.Context, query string, tool map[string]any) (*GroundedAnswer, error) {
	payload := map[string]any{
		"contents": userContent(strings.TrimSpace(query)),
		"tools":    []map[string]any{tool},
	}

	resp, err := c.generate(ctx, c.textModel, payload)
	if err != nil {
		return nil, err
	}
	text, err := resp.firstText()
	if err != nil {
		return nil, err
	}

	answer := &GroundedAnswer{Text: text, Sources: []Source{}}
	if meta := resp.Candidates[0].GroundingMetadata; meta != nil {
		for _, chunk := range meta.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				answer.Sources = append(answer.Sources, Source{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}

	return answer, nil
}
