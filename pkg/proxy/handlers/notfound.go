package handlers

import (
	"net/http"

	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
)

// MsgNotFound is the error text for paths no route serves.
const MsgNotFound = "Not found"

// NotFoundHandler answers every request with a JSON 404 naming the path.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteJSONResponse(w, http.StatusNotFound, types.NotFoundBody{
			Error: MsgNotFound,
			Path:  r.URL.Path,
		})
	})
}
