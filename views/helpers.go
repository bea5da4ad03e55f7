package views

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// html accumulates the first write error so components read top to bottom.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped for element content and attribute values.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// CategoryClass returns CSS classes for a category pill, with active variant.
func CategoryClass(active bool) string {
	base := "inline-flex items-center rounded border border-ink px-2.5 py-1 text-xs font-semibold hover:-translate-y-0.5 transition"
	if active {
		base += " bg-ink text-white"
	}
	return base
}

// categoryURL returns the home URL filtered to category.
func categoryURL(category string) string {
	if category == "" {
		return "/"
	}
	return "/?category=" + url.QueryEscape(category)
}

// ImageFieldText formats a stored image field for the admin textarea,
// one URL per line.
func ImageFieldText(field any) string {
	switch v := field.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(v, "[") {
			var urls []string
			if err := json.Unmarshal([]byte(v), &urls); err == nil {
				return strings.Join(urls, "\n")
			}
		}
		return v
	case []string:
		return strings.Join(v, "\n")
	case []any:
		var urls []string
		for _, u := range v {
			if s, ok := u.(string); ok {
				urls = append(urls, s)
			}
		}
		return strings.Join(urls, "\n")
	}
	return ""
}

// formDate trims an RFC 3339 date to the YYYY-MM-DD value a date input takes.
func formDate(date string) string {
	if len(date) > len("2006-01-02") {
		return date[:len("2006-01-02")]
	}
	return date
}
