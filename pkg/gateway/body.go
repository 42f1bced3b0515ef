package gateway

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/made-ai/made/pkg/models"
)

// Attachment is the minimal shape the gateway needs to encode one blob
// into a content block; it mirrors models.Attachment plus the bytes,
// which models.Attachment deliberately omits from its wire shape.
type Attachment struct {
	Filename string
	MimeType string
	FileType models.FileType
	Data     []byte
}

// buildContent rewrites a user-role message's plain-text content into an
// ordered multimodal content array when attachments are present: the
// original text first, then one part per attachment in declaration
// order (§4.2).
func buildContent(text string, attachments []Attachment) any {
	if len(attachments) == 0 {
		return text
	}

	blocks := make([]ContentBlock, 0, len(attachments)+1)
	blocks = append(blocks, ContentBlock{Type: "text", Text: text})

	for _, att := range attachments {
		blocks = append(blocks, encodeAttachment(att))
	}
	return blocks
}

func encodeAttachment(att Attachment) ContentBlock {
	b64 := base64.StdEncoding.EncodeToString(att.Data)
	dataURI := fmt.Sprintf("data:%s;base64,%s", att.MimeType, b64)

	switch att.FileType {
	case models.FileTypeImage:
		return ContentBlock{Type: "image_url", ImageURL: &URLData{URL: dataURI}}
	case models.FileTypePDF, models.FileTypeFile:
		return ContentBlock{Type: "file", File: &FileData{Filename: att.Filename, FileData: dataURI}}
	case models.FileTypeAudio:
		return ContentBlock{
			Type:       "input_audio",
			InputAudio: &AudioData{Data: base64.StdEncoding.EncodeToString(att.Data), Format: mimeSubtype(att.MimeType)},
		}
	case models.FileTypeVideo:
		return ContentBlock{Type: "video_url", VideoURL: &URLData{URL: dataURI}}
	default:
		return ContentBlock{Type: "text", Text: string(att.Data)}
	}
}

func mimeSubtype(mime string) string {
	if idx := strings.IndexByte(mime, '/'); idx >= 0 {
		return mime[idx+1:]
	}
	return mime
}

// extractCost reads the response usage object following the canonical
// precedence order (§4.2, §9 "Ambiguity — cost field fallbacks"):
// usage.cost -> usage.total_cost -> sum(usage.cost_details) ->
// usage.response.cost -> top-level cost -> 0.0.
func extractCost(resp *ChatResponse) float64 {
	if u := resp.Usage; u != nil {
		if u.Cost != nil {
			return *u.Cost
		}
		if u.TotalCost != nil {
			return *u.TotalCost
		}
		if u.CostDetails != nil {
			var sum float64
			if u.CostDetails.UpstreamInferenceCost != nil {
				sum += *u.CostDetails.UpstreamInferenceCost
			}
			if u.CostDetails.UpstreamImageInferenceCost != nil {
				sum += *u.CostDetails.UpstreamImageInferenceCost
			}
			if sum != 0 {
				return sum
			}
		}
		if u.Response != nil && u.Response.Cost != nil {
			return *u.Response.Cost
		}
	}
	if resp.Cost != nil {
		return *resp.Cost
	}
	return 0
}

func extractTokens(resp *ChatResponse) (prompt, completion int) {
	if resp.Usage == nil {
		return 0, 0
	}
	return resp.Usage.PromptTokens, resp.Usage.CompletionTokens
}
