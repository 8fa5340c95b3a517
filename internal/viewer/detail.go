package viewer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ev-station-map/internal/models"
)

// RenderDetail prints every field of a station as an indented tree. Nested
// objects and arrays are walked depth first, two spaces per level, object
// keys sorted and array elements keyed by index.
func RenderDetail(s models.Station) string {
	var b strings.Builder
	writeFields(&b, map[string]any(s), 0)
	return b.String()
}

func writeFields(b *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeNode(b, k, m[k], depth)
	}
}

func writeNode(b *strings.Builder, key string, v any, depth int) {
	indent := strings.Repeat("  ", depth)

	switch t := v.(type) {
	case models.Station:
		writeNode(b, key, map[string]any(t), depth)
	case map[string]any:
		if len(t) == 0 {
			fmt.Fprintf(b, "%s%s: {}\n", indent, key)
			return
		}
		fmt.Fprintf(b, "%s%s:\n", indent, key)
		writeFields(b, t, depth+1)
	case []any:
		if len(t) == 0 {
			fmt.Fprintf(b, "%s%s: []\n", indent, key)
			return
		}
		fmt.Fprintf(b, "%s%s:\n", indent, key)
		for i, e := range t {
			writeNode(b, strconv.Itoa(i), e, depth+1)
		}
	default:
		fmt.Fprintf(b, "%s%s: %s\n", indent, key, formatScalar(t))
	}
}

func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
