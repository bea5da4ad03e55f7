package policydesk

import "github.com/eringen/policydesk/content"

// Article is the stored content type. Image keeps the shape it arrived in:
// nil, a URL, a []string, or a JSON array as text.
type Article struct {
	ID           string
	Slug         string
	Title        string
	Date         string // RFC 3339 or YYYY-MM-DD
	Category     string
	Summary      string
	Content      string
	Image        any
	Author       string
	AuthorAvatar string
	Link         string
	Published    bool
}

// ArticleView is an Article with its display fields resolved. Views are
// built per render and never stored.
type ArticleView struct {
	Article
	ImageURL    string
	AvatarURL   string
	DisplayDate string
}

// StaticPage is a legal or informational page loaded from the pages directory.
type StaticPage struct {
	Name    string // URL segment, e.g. "privacy"
	Title   string
	Updated string
	Body    string // markdown
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// ArticleFromRecord converts a fabricated or imported record into an Article.
func ArticleFromRecord(r content.Record) Article {
	return Article{
		ID:           r.ID,
		Slug:         r.Slug,
		Title:        r.Title,
		Date:         r.DateISO,
		Category:     r.Category,
		Summary:      r.Summary,
		Content:      r.Body,
		Image:        r.Image,
		Author:       r.Author,
		AuthorAvatar: r.AuthorAvatar,
		Link:         "/articles/" + r.Slug,
		Published:    true,
	}
}
