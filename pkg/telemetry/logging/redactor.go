package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces values of sensitive attributes.
const Redacted = "***"

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// Redactor masks credentials in log values.
type Redactor struct {
	patterns []redactPattern
}

// NewRedactor creates a Redactor for bearer tokens and OpenAI-style keys.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{regex: regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), replacement: "Bearer " + Redacted},
			{regex: regexp.MustCompile(`sk-[A-Za-z0-9_\-]{6,}`), replacement: "sk-" + Redacted},
		},
	}
}

// RedactString masks every credential found in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr masks attr when its key names a secret or its string value
// contains one. Groups are walked recursively.
func (r *Redactor) RedactAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, Redacted)
	}

	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, r.RedactString(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]slog.Attr, len(group))
		for i, a := range group {
			out[i] = r.RedactAttr(a)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(out...)}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(attr.Key, r.RedactString(err.Error()))
		}
	}
	return attr
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	switch k {
	case "authorization", "api_key", "apikey", "password", "secret", "token":
		return true
	}
	return strings.HasSuffix(k, "_secret") || strings.HasSuffix(k, "_password") || strings.HasSuffix(k, "_api_key")
}

// RedactAPIKey keeps the first four characters of a key for identification.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return Redacted
	}
	return apiKey[:4] + Redacted
}

// RedactingHandler masks secrets in record messages and attributes before
// passing them on.
type RedactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{next: next, redactor: redactor}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, h.redactor.RedactString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.RedactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}
