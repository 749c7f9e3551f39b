// Package validation evaluates the declarative field rules attached to
// resource-type descriptors. The atomic engine collects its violations
// across a whole batch before anything executes.
package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/mwhitworth/stagehand/internal/schema"
)

// Violation is one field-level rule failure.
type Violation struct {
	Attribute string
	Detail    string
}

// Resource checks the supplied attribute values against the type's declared
// rules and returns every violation, in attribute declaration order. When
// creating, required attributes must be supplied; when updating, rules apply
// only to the attributes the payload carries.
func Resource(rt *schema.ResourceType, attrs map[string]any, creating bool) []Violation {
	var out []Violation
	for _, attr := range rt.Attributes {
		value, supplied := attrs[attr.Name]

		if attr.Required {
			if creating && !supplied {
				out = append(out, required(attr.Name))
				continue
			}
			if supplied && isEmpty(value) {
				out = append(out, required(attr.Name))
				continue
			}
		}
		if !supplied {
			continue
		}

		if attr.MaxLength > 0 {
			if s, ok := value.(string); ok && utf8.RuneCountInString(s) > attr.MaxLength {
				out = append(out, Violation{
					Attribute: attr.Name,
					Detail:    fmt.Sprintf("The '%s' attribute value must be at most %d characters long.", attr.Name, attr.MaxLength),
				})
			}
		}
	}
	return out
}

func required(name string) Violation {
	return Violation{
		Attribute: name,
		Detail:    fmt.Sprintf("A value for the '%s' attribute is required.", name),
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
