package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/made-ai/made/pkg/masking"
)

var redactor = masking.New()

// Client is the LLM Gateway Adapter. One Client is shared across all
// concurrent deliberations in the process; its catalog cache is the
// process-wide per-user map described in §5 "Shared resources".
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	catalogMu sync.RWMutex
	catalog   map[string]map[string]CatalogEntry // user id -> model id -> entry
	catalogAt map[string]time.Time
	catalogTTL time.Duration

	fetchCatalog func(ctx context.Context, userID string) (map[string]CatalogEntry, error)
}

// New builds a gateway Client against baseURL using apiKey for bearer
// auth. fetchCatalog supplies the per-user capability catalog; pass nil
// to disable catalog lookups (unsupported_attachments then emits no
// warnings for every model, per the "missing entry" conservative rule).
func New(baseURL, apiKey string, callTimeout, catalogTTL time.Duration, fetchCatalog func(ctx context.Context, userID string) (map[string]CatalogEntry, error)) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		http:         &http.Client{Timeout: callTimeout},
		catalog:      make(map[string]map[string]CatalogEntry),
		catalogAt:    make(map[string]time.Time),
		catalogTTL:   catalogTTL,
		fetchCatalog: fetchCatalog,
	}
}

// Complete invokes the gateway's chat completions endpoint for one
// model/message exchange, with the given attachments rewritten into a
// multimodal content array on the final user message (§4.2).
func (c *Client) Complete(ctx context.Context, model, userID, prompt string, attachments []Attachment) (*CompletionResult, error) {
	req := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "user", Content: buildContent(prompt, attachments)},
		},
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, &Error{Model: model, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &Error{Model: model, StatusCode: resp.StatusCode, Message: redactor.Redact(string(body))}
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &Error{Model: model, Message: fmt.Sprintf("decode response: %v", err)}
	}

	var content string
	if len(chatResp.Choices) > 0 {
		content = chatResp.Choices[0].Message.Content
	}
	promptTokens, completionTokens := extractTokens(&chatResp)

	return &CompletionResult{
		Content:          content,
		ActualCost:       extractCost(&chatResp),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

func (c *Client) send(ctx context.Context, body ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// UnsupportedAttachments returns one human-readable warning string per
// attachment type present whose capability flag is false for model_id,
// per §4.2's capability-introspection contract. If the catalog entry for
// model is missing, no warnings are emitted (conservative).
func (c *Client) UnsupportedAttachments(ctx context.Context, userID, modelID string, attachments []Attachment) []string {
	entry, ok := c.catalogEntry(ctx, userID, modelID)
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var warnings []string
	for _, att := range attachments {
		if seen[string(att.FileType)] {
			continue
		}
		if supported(entry, string(att.FileType)) {
			continue
		}
		seen[string(att.FileType)] = true
		warnings = append(warnings, fmt.Sprintf("%s attachments are not supported by model %s", att.FileType, modelID))
	}
	return warnings
}

func supported(entry CatalogEntry, ft string) bool {
	switch ft {
	case "image":
		return entry.Image
	case "file", "pdf":
		return entry.File
	case "audio":
		return entry.Audio
	case "video":
		return entry.Video
	case "text":
		return entry.Text
	default:
		return true
	}
}

// catalogEntry returns the cached (or freshly fetched) catalog entry for
// modelID under userID's per-user cache. Replacement is atomic per the
// "require atomic replacement of the per-user entry" rule in §5; last
// writer wins on duplicate concurrent fetches.
func (c *Client) catalogEntry(ctx context.Context, userID, modelID string) (CatalogEntry, bool) {
	c.catalogMu.RLock()
	userCatalog, ok := c.catalog[userID]
	fetchedAt, fresh := c.catalogAt[userID]
	c.catalogMu.RUnlock()

	if ok && (c.catalogTTL <= 0 || time.Since(fetchedAt) < c.catalogTTL) {
		entry, found := userCatalog[modelID]
		if found || !fresh {
			return entry, found
		}
	}

	if c.fetchCatalog == nil {
		return CatalogEntry{}, false
	}

	fetched, err := c.fetchCatalog(ctx, userID)
	if err != nil {
		slog.Warn("gateway: catalog fetch failed", "user_id", userID, "error", redactor.Redact(err.Error()))
		c.catalogMu.RLock()
		userCatalog = c.catalog[userID]
		c.catalogMu.RUnlock()
		entry, found := userCatalog[modelID]
		return entry, found
	}

	c.catalogMu.Lock()
	c.catalog[userID] = fetched
	c.catalogAt[userID] = time.Now()
	c.catalogMu.Unlock()

	entry, found := fetched[modelID]
	return entry, found
}

// InvalidateCatalog drops the cached catalog for a user, forcing a
// refetch on next use — called on API-key rotation (§9 "Model catalog
// cache" design note).
func (c *Client) InvalidateCatalog(userID string) {
	c.catalogMu.Lock()
	delete(c.catalog, userID)
	delete(c.catalogAt, userID)
	c.catalogMu.Unlock()
}

// FetchCatalog builds the default fetchCatalog callback New expects: a
// GET against baseURL+"/models" returning the caller's visible model
// catalog. userID is accepted for interface symmetry with a
// multi-tenant gateway that scopes catalogs per caller; this
// implementation queries the same endpoint regardless, since MADE has
// one shared gateway API key (§6 "out of scope: API-key
// encryption-at-rest" implies single-key deployments, not per-user
// upstream credentials).
func FetchCatalog(baseURL, apiKey string, httpClient *http.Client) func(ctx context.Context, userID string) (map[string]CatalogEntry, error) {
	return func(ctx context.Context, _ string) (map[string]CatalogEntry, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/models", nil)
		if err != nil {
			return nil, fmt.Errorf("build catalog request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("fetch catalog: status %d: %s", resp.StatusCode, redactor.Redact(string(body)))
		}

		var entries []CatalogEntry
		if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}

		catalog := make(map[string]CatalogEntry, len(entries))
		for _, e := range entries {
			catalog[e.ModelID] = e
		}
		return catalog, nil
	}
}
