// Package gateway is the LLM Gateway Adapter (C2): it wraps the external
// LLM HTTP endpoint with multimodal multipart encoding, capability
// introspection, and per-call token/cost extraction (§4.2). The wire
// shape is OpenAI-compatible chat completions, grounded on the pack's
// only HTTP multimodal chat-completions client.
package gateway

import "encoding/json"

// ChatRequest is the OpenAI-compatible chat completions request body.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message is one entry in a chat request. Content is either a plain
// string or, once attachments are present, a []ContentBlock.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentBlock is one multimodal part of a rewritten user message (§4.2).
type ContentBlock struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	ImageURL  *URLData   `json:"image_url,omitempty"`
	File      *FileData  `json:"file,omitempty"`
	InputAudio *AudioData `json:"input_audio,omitempty"`
	VideoURL  *URLData   `json:"video_url,omitempty"`
}

// URLData wraps a data: URI for image_url / video_url blocks.
type URLData struct {
	URL string `json:"url"`
}

// FileData wraps a filename + data: URI for file blocks.
type FileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

// AudioData wraps raw base64 audio for input_audio blocks.
type AudioData struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

// ChatResponse is the OpenAI-compatible chat completions response.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage holds the model's reply text.
type ChoiceMessage struct {
	Content string `json:"content"`
}

// Usage carries token counts and the cost-fallback fields read per the
// precedence order documented in §4.2.
type Usage struct {
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	Cost             *float64        `json:"cost,omitempty"`
	TotalCost        *float64        `json:"total_cost,omitempty"`
	CostDetails      *CostDetails    `json:"cost_details,omitempty"`
	Response         *ResponseCost   `json:"response,omitempty"`
	Raw              json.RawMessage `json:"-"`
}

// CostDetails is the third cost-extraction fallback: the sum of
// upstream_inference_cost + upstream_image_inference_cost.
type CostDetails struct {
	UpstreamInferenceCost      *float64 `json:"upstream_inference_cost,omitempty"`
	UpstreamImageInferenceCost *float64 `json:"upstream_image_inference_cost,omitempty"`
}

// ResponseCost is the last usage-object cost fallback, tried before the
// top-level cost field.
type ResponseCost struct {
	Cost *float64 `json:"cost,omitempty"`
}

// CompletionResult is what Complete returns: the model's text plus the
// accounting the engines attach to each created node.
type CompletionResult struct {
	Content          string
	ActualCost       float64
	PromptTokens     int
	CompletionTokens int
}

// CatalogEntry describes one model's declared capabilities.
type CatalogEntry struct {
	ModelID string          `json:"model_id"`
	Image   bool            `json:"image"`
	File    bool            `json:"file"`
	Audio   bool            `json:"audio"`
	Video   bool            `json:"video"`
	Text    bool            `json:"text"`
}
