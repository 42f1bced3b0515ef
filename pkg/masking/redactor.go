// Package masking redacts secrets from text before it reaches a log
// line. Adapted from the teacher's pkg/masking (a pattern-driven
// regex masker originally aimed at MCP tool results and Kubernetes
// Secret manifests) down to MADE's actual exposure surface: gateway
// request/response bodies and wrapped errors that may echo back an
// Authorization header or an API key embedded in an upstream error
// payload. The code-masker/pattern-group machinery that resolved
// per-MCP-server masking configs has no home here — MADE has no MCP
// servers — so it is replaced by one fixed, always-on pattern set.
package masking

import "regexp"

// CompiledPattern pairs a detection regex with its replacement text,
// the same shape the teacher compiles its masking patterns into.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns covers the secret shapes that can plausibly appear in
// a gateway request/response body or an error message: bearer tokens,
// common API-key key/value pairs (JSON or query-string style), and
// basic-auth userinfo embedded in a URL.
var builtinPatterns = []CompiledPattern{
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)(Bearer\s+)[A-Za-z0-9._~+/=-]{8,}`),
		Replacement: "${1}[REDACTED]",
	},
	{
		Name:        "api_key_field",
		Regex:       regexp.MustCompile(`(?i)("?(?:api[_-]?key|apikey|access[_-]?token)"?\s*[:=]\s*"?)[A-Za-z0-9._~+/=-]{8,}("?)`),
		Replacement: "${1}[REDACTED]${2}",
	},
	{
		Name:        "url_userinfo",
		Regex:       regexp.MustCompile(`(://[^/\s:]+:)[^@\s]+(@)`),
		Replacement: "${1}[REDACTED]${2}",
	},
}

// Redactor applies the built-in pattern set to arbitrary text. It holds
// no mutable state and is safe for concurrent use, matching the
// teacher's stateless-after-construction masking service.
type Redactor struct {
	patterns []CompiledPattern
}

// New builds a Redactor over the built-in pattern set.
func New() *Redactor {
	return &Redactor{patterns: builtinPatterns}
}

// Redact returns text with every recognized secret shape replaced by a
// redaction marker. Safe to call on text with no secrets in it — it is
// simply returned unchanged.
func (r *Redactor) Redact(text string) string {
	masked := text
	for _, p := range r.patterns {
		masked = p.Regex.ReplaceAllString(masked, p.Replacement)
	}
	return masked
}
