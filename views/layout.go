package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/policydesk"
)

// layout wraps body in the site chrome: head metadata, header, and footer.
func layout(site policydesk.SiteConfig, meta policydesk.PageMeta, jsonLD string, body func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!doctype html><html lang="`)
		h.text(site.Locale)
		h.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(`</title><meta name="description" content="`)
		h.text(description)
		h.raw(`"><meta property="og:title" content="`)
		h.text(title)
		h.raw(`"><meta property="og:type" content="`)
		h.text(ogType)
		h.raw(`">`)
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.text(meta.URL)
			h.raw(`"><meta property="og:url" content="`)
			h.text(meta.URL)
			h.raw(`">`)
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image" content="`)
			h.text(meta.Image)
			h.raw(`">`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml" title="`)
		h.text(site.Name)
		h.raw(`"><link rel="stylesheet" href="/public/styles.css">`)
		if jsonLD != "" {
			h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		}
		h.raw(`<script src="/public/viewport-gate.js" defer></script></head><body class="bg-stone-50 text-ink">`)
		h.raw(`<header class="border-b border-ink"><a href="/" class="text-xl font-bold">`)
		h.text(site.Name)
		h.raw(`</a></header><main class="mx-auto max-w-4xl px-4 py-8">`)
		if h.err == nil {
			body(ctx, h)
		}
		h.raw(`</main><footer class="border-t border-ink py-6 text-sm"><nav>`)
		h.raw(`<a href="/pages/about/">소개</a> · <a href="/pages/privacy/">개인정보처리방침</a> · <a href="/pages/terms/">이용약관</a> · <a href="/feed.xml">RSS</a>`)
		h.raw(`</nav></footer></body></html>`)
		return h.err
	})
}

// adminLayout is the bare chrome for admin screens.
func adminLayout(title string, body func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!doctype html><html><head><meta charset="utf-8"><meta name="robots" content="noindex"><title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/public/styles.css"><script src="/public/htmx.min.js" defer></script></head><body class="admin">`)
		if h.err == nil {
			body(ctx, h)
		}
		h.raw(`</body></html>`)
		return h.err
	})
}
