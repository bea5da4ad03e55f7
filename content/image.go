package content

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// PlaceholderCard stands in for missing article imagery.
	PlaceholderCard = "/placeholder-card.jpg"
	// PlaceholderThumb stands in for missing profile imagery.
	PlaceholderThumb = "/placeholder-thumb.jpg"
)

// avatarServiceRe matches URLs from generated-avatar services.
var avatarServiceRe = regexp.MustCompile(`^https?://(api\.dicebear\.com|ui-avatars\.com|i\.pravatar\.cc)/`)

// ResolveContentImage reduces an image field to one displayable URL.
//
// The field may be nil, a URL string, a slice of URLs, or a JSON-encoded
// array of URLs stored as text. Anything that yields no usable first URL
// resolves to PlaceholderCard.
func ResolveContentImage(field any) string {
	switch v := field.(type) {
	case nil:
		return PlaceholderCard
	case *string:
		if v == nil {
			return PlaceholderCard
		}
		return ResolveContentImage(*v)
	case []string:
		if len(v) == 0 {
			return PlaceholderCard
		}
		return orPlaceholder(v[0])
	case []any:
		if len(v) == 0 {
			return PlaceholderCard
		}
		first, _ := v[0].(string)
		return orPlaceholder(first)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return PlaceholderCard
		}
		return ResolveContentImage(decoded)
	case string:
		if v == "" {
			return PlaceholderCard
		}
		if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
			var urls []any
			if err := json.Unmarshal([]byte(v), &urls); err != nil || len(urls) == 0 {
				return PlaceholderCard
			}
			first, _ := urls[0].(string)
			return orPlaceholder(first)
		}
		return v
	default:
		return PlaceholderCard
	}
}

// ResolveProfileImage returns the avatar URL for an author. Only an absent
// value is replaced; any present value, avatar-service URL or not, is
// returned as is.
func ResolveProfileImage(field any) string {
	var s string
	switch v := field.(type) {
	case string:
		s = v
	case *string:
		if v != nil {
			s = *v
		}
	}
	if s == "" {
		return PlaceholderThumb
	}
	return s
}

// IsAvatarServiceURL reports whether u points at a generated-avatar service.
func IsAvatarServiceURL(u string) bool {
	return avatarServiceRe.MatchString(u)
}

func orPlaceholder(s string) string {
	if s == "" {
		return PlaceholderCard
	}
	return s
}
