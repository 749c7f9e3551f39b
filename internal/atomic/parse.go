package atomic

import (
	"encoding/json"
	"net/http"

	"github.com/mwhitworth/stagehand/internal/jsonapi"
)

// ParseOperations decodes a request body into its ordered operation entries.
// A body that is not a JSON object, or whose atomic:operations array is
// missing or empty, is rejected as malformed.
func ParseOperations(body []byte) ([]jsonapi.Operation, error) {
	var doc jsonapi.OperationsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &jsonapi.Error{
			Status: http.StatusBadRequest,
			Title:  "Failed to deserialize request body.",
			Detail: err.Error(),
		}
	}
	if len(doc.Operations) == 0 {
		return nil, &jsonapi.Error{
			Status:  http.StatusBadRequest,
			Title:   "No operations found.",
			Detail:  "The 'atomic:operations' element is required and must contain at least one operation.",
			Pointer: "/atomic:operations",
		}
	}
	return doc.Operations, nil
}
