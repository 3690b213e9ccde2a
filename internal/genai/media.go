package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const illustrationStyle = "Colorful children's book illustration, soft shapes, friendly characters, no text in the image."

// GenerateImage renders an illustration for a prompt and returns the raw
// image bytes with their MIME type.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	payload := map[string]any{
		"contents": userContent(fmt.Sprintf("%s %s", strings.TrimSpace(prompt), illustrationStyle)),
		"generationConfig": map[string]any{
			"responseModalities": []string{"IMAGE"},
		},
	}

	resp, err := c.generate(ctx, c.imageModel, payload)
	if err != nil {
		return nil, "", err
	}
	inline, err := resp.firstInline()
	if err != nil {
		return nil, "", err
	}

	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", ErrInvalidResponse)
	}

	return data, inline.MimeType, nil
}

// EditImage applies an instruction to an existing image and returns the
// edited image bytes.
func (c *Client) EditImage(ctx context.Context, image []byte, mimeType, instruction string) ([]byte, string, error) {
	payload := map[string]any{
		"contents": []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Text: strings.TrimSpace(instruction)},
			},
		}},
		"generationConfig": map[string]any{
			"responseModalities": []string{"IMAGE"},
		},
	}

	resp, err := c.generate(ctx, c.imageModel, payload)
	if err != nil {
		return nil, "", err
	}
	inline, err := resp.firstInline()
	if err != nil {
		return nil, "", err
	}

	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", ErrInvalidResponse)
	}

	return data, inline.MimeType, nil
}

// AnalyzeImage answers a question about an image.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, question string) (string, error) {
	payload := map[string]any{
		"contents": []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Text: strings.TrimSpace(question)},
			},
		}},
	}

	resp, err := c.generate(ctx, c.textModel, payload)
	if err != nil {
		return "", err
	}
	return resp.firstText()
}

// videoPollInterval is the wait between long-running operation polls.
const videoPollInterval = 10 * time.Second

// GenerateVideo starts a video generation and polls the long-running
// operation until it finishes. Returns the hosted video URI. The context
// bounds the whole wait.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	start := map[string]any{
		"instances": []map[string]any{
			{"prompt": strings.TrimSpace(prompt)},
		},
	}

	raw, err := c.doJSON(ctx, fmt.Sprintf("/v1beta/models/%s:predictLongRunning", c.videoModel), start)
	if err != nil {
		return "", err
	}

	var op struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &op); err != nil || op.Name == "" {
		return "", fmt.Errorf("missing operation name: %w", ErrInvalidResponse)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(videoPollInterval):
		}

		raw, err := c.doGet(ctx, "/v1beta/"+op.Name)
		if err != nil {
			return "", err
		}

		var status struct {
			Done  bool `json:"done"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
			Response struct {
				GenerateVideoResponse struct {
					GeneratedSamples []struct {
						Video struct {
							URI string `json:"uri"`
						} `json:"video"`
					} `json:"generatedSamples"`
				} `json:"generateVideoResponse"`
			} `json:"response"`
		}
		if err := json.Unmarshal(raw, &status); err != nil {
			return "", fmt.Errorf("failed to decode operation: %w", err)
		}

		if !status.Done {
			continue
		}
		if status.Error != nil {
			return "", fmt.Errorf("video generation failed: %s", status.Error.Message)
		}
		samples := status.Response.GenerateVideoResponse.GeneratedSamples
		if len(samples) == 0 || samples[0].Video.URI == "" {
			return "", fmt.Errorf("no video in finished operation: %w", ErrInvalidResponse)
		}
		return samples[0].Video.URI, nil
	}
}

// defaultVoice is the prebuilt narrator voice.
const defaultVoice = "Kore"

// SynthesizeSpeech converts text to raw 24 kHz 16-bit mono PCM.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	payload := map[string]any{
		"contents": userContent(text),
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{
						"voiceName": defaultVoice,
					},
				},
			},
		},
	}

	resp, err := c.generate(ctx, c.speechModel, payload)
	if err != nil {
		return nil, err
	}
	inline, err := resp.firstInline()
	if err != nil {
		return nil, err
	}

	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio: %w", ErrInvalidResponse)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("empty audio: %w", ErrInvalidResponse)
	}

	return pcm, nil
}
