package policydesk

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const feedLimit = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description"`
	Author      string        `xml:"author,omitempty"`
	Category    string        `xml:"category,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// parseArticleDate accepts the RFC 3339 and YYYY-MM-DD forms articles are
// stored with.
func parseArticleDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (a *App) renderRSS(c echo.Context, articles []Article) error {
	base := a.Config.URL
	if len(articles) > feedLimit {
		articles = articles[:feedLimit]
	}
	items := make([]rssItem, 0, len(articles))
	for _, v := range a.Presenter.PresentAll(articles) {
		pubDate := ""
		if t, ok := parseArticleDate(v.Date); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		articleURL := BuildURL(base, "articles", v.Slug)
		items = append(items, rssItem{
			Title:       v.Title,
			Link:        articleURL,
			Description: v.Summary,
			Author:      v.Author,
			Category:    v.Category,
			PubDate:     pubDate,
			GUID:        articleURL,
			Enclosure: &rssEnclosure{
				URL:  AbsoluteURL(base, v.ImageURL),
				Type: "image/jpeg",
			},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Language:    a.Config.Locale,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
