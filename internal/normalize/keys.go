package normalize

import (
	"sort"
	"strings"
)

// ListKey strips the bracket suffix that form encoders append to repeated keys and
// reports whether it was present.
// Examples:
//   - "ids[]" → "ids", true
//   - "ids" → "ids", false
//   - " name " → "name", false
func ListKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if strings.HasSuffix(key, "[]") {
		return strings.TrimSuffix(key, "[]"), true
	}
	return key, false
}

// Values folds url.Values-like data into a raw mapping.
// A key seen once yields its string; a repeated key, or one sent with a "[]" suffix,
// yields []string in arrival order. Keys differing only by the suffix are merged, the plain
// key's values first.
func Values(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	lists := make(map[string][]string, len(values))
	forced := make(map[string]bool)

	raws := make([]string, 0, len(values))
	for raw := range values {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	for _, raw := range raws {
		vs := values[raw]
		key, isList := ListKey(raw)
		if key == "" {
			continue
		}
		lists[key] = append(lists[key], vs...)
		if isList {
			forced[key] = true
		}
	}

	for key, vs := range lists {
		if len(vs) == 1 && !forced[key] {
			out[key] = vs[0]
			continue
		}
		out[key] = vs
	}
	return out
}

// Media kinds returned by MediaKind.
const (
	MediaNone      = ""
	MediaJSON      = "json"
	MediaYAML      = "yaml"
	MediaTOML      = "toml"
	MediaForm      = "form"
	MediaMultipart = "multipart"
	MediaOther     = "other"
)

// MediaKind classifies a parsed media type.
// Examples:
//   - "application/json" → "json"
//   - "application/vnd.api+json" → "json"
//   - "application/x-yaml" → "yaml"
//   - "multipart/form-data" → "multipart"
func MediaKind(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case mt == "":
		return MediaNone
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return MediaJSON
	case mt == "application/yaml", mt == "application/x-yaml", mt == "text/yaml", strings.HasSuffix(mt, "+yaml"):
		return MediaYAML
	case mt == "application/toml", mt == "text/toml":
		return MediaTOML
	case mt == "application/x-www-form-urlencoded":
		return MediaForm
	case mt == "multipart/form-data":
		return MediaMultipart
	default:
		return MediaOther
	}
}
