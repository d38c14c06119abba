package cli

import (
	"net/http"

	"github.com/jasperwreed/ai-assistant/internal/backend"
)

// hintFor suggests a next step for a failed backend call, or "" when the
// error message says enough.
func hintFor(err error) string {
	switch status := backend.StatusCode(err); {
	case backend.IsTransport(err):
		return "is the backend running? Check --backend or backend.base_url."
	case backend.IsDecode(err):
		return "the backend sent an unexpected body; is --backend pointing at the assistant API?"
	case status == http.StatusNotFound:
		return "the backend has no record with that id."
	case status >= http.StatusInternalServerError:
		return "the backend failed to handle the request; check its logs."
	}
	return ""
}
