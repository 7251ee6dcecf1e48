package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy/types"
)

// WriteJSONResponse writes data as JSON with the given status. HTML
// characters are not escaped so upstream text passes through unchanged.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteError maps err with HandleError and writes the result. It returns
// the status written.
func WriteError(w http.ResponseWriter, err error, now time.Time, debug bool) int {
	status, body := HandleError(err, now, debug)
	_ = WriteJSONResponse(w, status, body)
	return status
}

// FormatCompletion returns the upstream payload with the meta block
// appended. The upstream's own fields are left untouched, including any
// "meta" key it sent, which is replaced in place.
func FormatCompletion(completion *providers.Completion, model, version string, now time.Time) (*types.Object, error) {
	meta, err := json.Marshal(types.Meta{
		Timestamp:       types.Timestamp(now),
		Model:           model,
		FunctionVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode meta: %w", err)
	}

	out := types.NewObject()
	for _, key := range completion.Payload.Keys() {
		v, _ := completion.Payload.Get(key)
		out.Set(key, v)
	}
	out.Set("meta", meta)
	return out, nil
}
