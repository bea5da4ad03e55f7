package policydesk

import "github.com/eringen/policydesk/content"

// Presenter resolves the display fields of articles.
type Presenter struct {
	dates *content.DateFormatter
}

// NewPresenter returns a Presenter formatting dates with dates.
func NewPresenter(dates *content.DateFormatter) *Presenter {
	return &Presenter{dates: dates}
}

// Present returns the view of a with image, avatar and date resolved.
func (p *Presenter) Present(a Article) ArticleView {
	return ArticleView{
		Article:     a,
		ImageURL:    content.ResolveContentImage(a.Image),
		AvatarURL:   content.ResolveProfileImage(a.AuthorAvatar),
		DisplayDate: p.dates.Format(a.Date),
	}
}

// PresentAll presents each article in order.
func (p *Presenter) PresentAll(articles []Article) []ArticleView {
	out := make([]ArticleView, len(articles))
	for i, a := range articles {
		out[i] = p.Present(a)
	}
	return out
}
