package policydesk

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/policydesk/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://policy.example", nil, "https://policy.example"},
		{"https://policy.example", []string{"articles", "a"}, "https://policy.example/articles/a/"},
		{"https://policy.example/sub/", []string{"pages", "privacy"}, "https://policy.example/sub/pages/privacy/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	if got := AbsoluteURL("https://policy.example", content.PlaceholderCard); got != "https://policy.example/placeholder-card.jpg" {
		t.Errorf("relative ref: %q", got)
	}
	if got := AbsoluteURL("https://policy.example", "https://cdn.example/a.jpg"); got != "https://cdn.example/a.jpg" {
		t.Errorf("absolute ref: %q", got)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" a ", "", "  ", "b\r"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("FilterEmpty = %q", got)
	}
}

func TestRelatedArticles(t *testing.T) {
	current := Article{Slug: "cur", Category: "주거"}
	all := []Article{
		{Slug: "cur", Category: "주거"},
		{Slug: "a", Category: "주거"},
		{Slug: "b", Category: "교육"},
		{Slug: "c", Category: "주거"},
		{Slug: "d", Category: "주거"},
	}
	got := RelatedArticles(current, all, 2)
	if len(got) != 2 || got[0].Slug != "a" || got[1].Slug != "c" {
		t.Errorf("RelatedArticles = %+v", got)
	}
	if got := RelatedArticles(Article{Slug: "x"}, all, 4); len(got) != 0 {
		t.Errorf("uncategorized article should have no related, got %d", len(got))
	}
}

func TestNewsArticleJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "정책브리핑", URL: "https://policy.example"}
	v := ArticleView{
		Article:  Article{Slug: "s", Title: "제목", Author: "김민준", Category: "주거", Date: "2024-01-15"},
		ImageURL: content.PlaceholderCard,
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(NewsArticleJsonLD(v, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["@type"] != "NewsArticle" || data["url"] != "https://policy.example/articles/s/" {
		t.Errorf("unexpected JSON-LD: %v", data)
	}
	images, _ := data["image"].([]any)
	if len(images) != 1 || images[0] != "https://policy.example/placeholder-card.jpg" {
		t.Errorf("image = %v", data["image"])
	}
	if data["articleSection"] != "주거" {
		t.Errorf("articleSection = %v", data["articleSection"])
	}
}

func TestPresenter(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	p := NewPresenter(content.NewDateFormatter("ko", seoul, zap.NewNop()))
	views := p.PresentAll([]Article{
		{Slug: "a", Date: "2024-01-15T00:30:00Z", Image: []string{"", "x.jpg"}},
		{Slug: "b", Date: "", AuthorAvatar: "https://example.com/me.png", Image: "y.jpg"},
	})
	if views[0].ImageURL != content.PlaceholderCard {
		t.Errorf("empty first image should resolve to placeholder, got %q", views[0].ImageURL)
	}
	if views[0].AvatarURL != content.PlaceholderThumb {
		t.Errorf("missing avatar = %q", views[0].AvatarURL)
	}
	if views[0].DisplayDate != "2024년 1월 15일 오전 09:30" {
		t.Errorf("DisplayDate = %q", views[0].DisplayDate)
	}
	if views[1].DisplayDate != content.DateMissing {
		t.Errorf("blank date = %q", views[1].DisplayDate)
	}
	if views[1].AvatarURL != "https://example.com/me.png" || views[1].ImageURL != "y.jpg" {
		t.Errorf("present values should pass through: %+v", views[1])
	}
}

func TestArticleFromRecord(t *testing.T) {
	a := ArticleFromRecord(content.Record{ID: "abc", Slug: "s-1", Title: "t", Image: []string{"x"}})
	if a.Link != "/articles/s-1" || !a.Published || a.ID != "abc" {
		t.Errorf("ArticleFromRecord = %+v", a)
	}
}
