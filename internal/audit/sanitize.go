package audit

import (
	"fmt"
	"strings"
)

// embeddedDataMarker prefixes self-describing encoded binary values (data
// URIs). Any string carrying it is replaced before persistence.
const embeddedDataMarker = "data:"

// binaryFields are field names that carry binary assets by convention. They
// are redacted regardless of their value.
var binaryFields = map[string]struct{}{
	"photo":     {},
	"image":     {},
	"picture":   {},
	"avatar":    {},
	"signature": {},
}

// redactionMarker names the stripped field so the stored document stays
// self-explanatory.
func redactionMarker(field string) string {
	return fmt.Sprintf("[REDACTED:%s]", field)
}

// Sanitize returns a deep copy of doc with every binary asset replaced by a
// redaction marker. The walk recurses into nested maps and slices, so a photo
// buried in person details is stripped the same as a top-level one. The input
// is never mutated.
func Sanitize(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		out[key] = sanitizeValue(key, value)
	}
	return out
}

func sanitizeValue(field string, value any) any {
	if _, ok := binaryFields[strings.ToLower(field)]; ok {
		return redactionMarker(field)
	}

	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, embeddedDataMarker) {
			return redactionMarker(field)
		}
		return v
	case map[string]any:
		return Sanitize(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = sanitizeValue(field, elem)
		}
		return out
	default:
		return value
	}
}
