// Package views provides the default HTML templates for policydesk as
// templ components.
package views

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/policydesk"
	"github.com/eringen/policydesk/content"
	"github.com/eringen/policydesk/markdown"
)

// Funcs returns the default view set.
func Funcs() policydesk.ViewFuncs {
	return policydesk.ViewFuncs{
		Home:           Home,
		Article:        Article,
		RelatedList:    RelatedList,
		Page:           Page,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminForm:      AdminForm,
		AdminImages:    AdminImages,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// Home lists articles, optionally filtered to one category.
func Home(site policydesk.SiteConfig, articles []policydesk.ArticleView, category string, categories []string) templ.Component {
	meta := policydesk.PageMeta{URL: policydesk.BuildURL(site.URL)}
	if category != "" {
		meta.Title = category
	}
	return layout(site, meta, policydesk.WebsiteJsonLD(site), func(ctx context.Context, h *html) {
		h.raw(`<nav class="flex flex-wrap gap-2 mb-6">`)
		h.raw(`<a href="/" class="`, CategoryClass(category == ""), `">전체</a>`)
		for _, c := range categories {
			h.raw(`<a href="`)
			h.text(categoryURL(c))
			h.raw(`" class="`, CategoryClass(c == category), `">`)
			h.text(c)
			h.raw(`</a>`)
		}
		h.raw(`</nav>`)
		if len(articles) == 0 {
			h.raw(`<p class="empty">게시된 기사가 없습니다.</p>`)
			return
		}
		h.raw(`<div class="grid gap-6 sm:grid-cols-2">`)
		for _, a := range articles {
			card(h, a)
		}
		h.raw(`</div>`)
	})
}

func card(h *html, a policydesk.ArticleView) {
	h.raw(`<article class="card"><a href="/articles/`, policydesk.PathEscape(a.Slug), `/">`)
	h.raw(`<img src="`)
	h.text(a.ImageURL)
	h.raw(`" alt="" loading="lazy" width="800" height="450">`)
	h.raw(`<h2 class="text-lg font-bold">`)
	h.text(a.Title)
	h.raw(`</h2></a>`)
	byline(h, a)
	h.raw(`<p>`)
	h.text(a.Summary)
	h.raw(`</p></article>`)
}

func byline(h *html, a policydesk.ArticleView) {
	h.raw(`<div class="byline flex items-center gap-2 text-sm"><img src="`)
	h.text(a.AvatarURL)
	h.raw(`" alt="" width="24" height="24" class="rounded-full"`)
	if content.IsAvatarServiceURL(a.AvatarURL) {
		h.raw(` referrerpolicy="no-referrer"`)
	}
	h.raw(`><span>`)
	h.text(a.Author)
	h.raw(`</span><time datetime="`)
	h.text(a.Date)
	h.raw(`">`)
	h.text(a.DisplayDate)
	h.raw(`</time>`)
	if a.Category != "" {
		h.raw(`<span class="category">`)
		h.text(a.Category)
		h.raw(`</span>`)
	}
	h.raw(`</div>`)
}

// Article renders one article. related is rendered below the body and is
// usually a viewport gate that loads the related list on demand.
func Article(site policydesk.SiteConfig, a policydesk.ArticleView, related templ.Component) templ.Component {
	meta := policydesk.PageMeta{
		Title:       a.Title,
		Description: a.Summary,
		URL:         policydesk.BuildURL(site.URL, "articles", a.Slug),
		OGType:      "article",
		Image:       policydesk.AbsoluteURL(site.URL, a.ImageURL),
	}
	return layout(site, meta, policydesk.NewsArticleJsonLD(a, site), func(ctx context.Context, h *html) {
		h.raw(`<article><h1 class="text-3xl font-bold">`)
		h.text(a.Title)
		h.raw(`</h1>`)
		byline(h, a)
		h.raw(`<img src="`)
		h.text(a.ImageURL)
		h.raw(`" alt="" width="800" height="450" class="my-6">`)
		h.raw(`<div class="prose">`)
		h.component(ctx, markdown.Markdown(a.Content))
		h.raw(`</div></article><section class="related mt-10"><h2 class="text-xl font-bold">관련 기사</h2>`)
		h.component(ctx, related)
		h.raw(`</section>`)
	})
}

// RelatedList is the fragment swapped into an article's related section.
func RelatedList(articles []policydesk.ArticleView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		if len(articles) == 0 {
			h.raw(`<p class="empty">관련 기사가 없습니다.</p>`)
			return h.err
		}
		h.raw(`<ul class="related-list">`)
		for _, a := range articles {
			h.raw(`<li><a href="/articles/`, policydesk.PathEscape(a.Slug), `/"><img src="`)
			h.text(a.ImageURL)
			h.raw(`" alt="" loading="lazy" width="160" height="90"><span>`)
			h.text(a.Title)
			h.raw(`</span></a><time datetime="`)
			h.text(a.Date)
			h.raw(`">`)
			h.text(a.DisplayDate)
			h.raw(`</time></li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// Page renders a static legal or informational page.
func Page(site policydesk.SiteConfig, page policydesk.StaticPage) templ.Component {
	meta := policydesk.PageMeta{
		Title: page.Title,
		URL:   policydesk.BuildURL(site.URL, "pages", page.Name),
	}
	return layout(site, meta, "", func(ctx context.Context, h *html) {
		h.raw(`<article class="prose"><h1>`)
		h.text(page.Title)
		h.raw(`</h1>`)
		if page.Updated != "" {
			h.raw(`<p class="text-sm">최종 수정일: `)
			h.text(page.Updated)
			h.raw(`</p>`)
		}
		h.component(ctx, markdown.Markdown(page.Body))
		h.raw(`</article>`)
	})
}

func csrfField(h *html, token string) {
	h.raw(`<input type="hidden" name="_csrf" value="`)
	h.text(token)
	h.raw(`">`)
}

func csrfHeaders(token string) string {
	b, _ := json.Marshal(map[string]string{"X-CSRF-Token": token})
	return string(b)
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return adminLayout("로그인", func(ctx context.Context, h *html) {
		h.raw(`<form method="post" action="/admin/login/" class="login">`)
		csrfField(h, csrfToken)
		if showError {
			h.raw(`<p class="error">비밀번호가 올바르지 않습니다.</p>`)
		}
		h.raw(`<label>비밀번호 <input type="password" name="password" required autofocus></label>`)
		h.raw(`<button type="submit">로그인</button></form>`)
	})
}

// AdminDashboard lists every article, published or not.
func AdminDashboard(articles []policydesk.ArticleView, message string, csrfToken string) templ.Component {
	return adminLayout("관리", func(ctx context.Context, h *html) {
		h.raw(`<div id="dashboard"><nav class="admin-nav"><a href="/admin/new/">새 기사</a> <a href="/admin/images/">이미지</a>`)
		h.raw(`<form method="post" action="/admin/logout/" class="inline">`)
		csrfField(h, csrfToken)
		h.raw(`<button type="submit">로그아웃</button></form></nav>`)
		if message != "" {
			h.raw(`<p class="message">`)
			h.text(message)
			h.raw(`</p>`)
		}
		h.raw(`<form method="post" action="/admin/seed/" class="seed">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="number" name="count" value="10" min="1" max="100"><button type="submit">샘플 생성</button></form>`)
		h.raw(`<table><thead><tr><th>제목</th><th>분류</th><th>작성자</th><th>날짜</th><th>공개</th><th></th></tr></thead><tbody>`)
		for _, a := range articles {
			slug := policydesk.PathEscape(a.Slug)
			h.raw(`<tr><td><a href="/admin/article/`, slug, `/">`)
			h.text(a.Title)
			h.raw(`</a></td><td>`)
			h.text(a.Category)
			h.raw(`</td><td>`)
			h.text(a.Author)
			h.raw(`</td><td>`)
			h.text(a.DisplayDate)
			h.raw(`</td><td>`, strconv.FormatBool(a.Published), `</td>`)
			h.raw(`<td><button hx-delete="/admin/article/`, slug, `/" hx-target="#dashboard" hx-swap="outerHTML" hx-confirm="삭제하시겠습니까?" hx-headers="`)
			h.text(csrfHeaders(csrfToken))
			h.raw(`">삭제</button></td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
	})
}

// AdminForm edits an article. An empty slug creates a new one.
func AdminForm(a policydesk.Article, csrfToken string) templ.Component {
	title := "새 기사"
	if a.Slug != "" {
		title = a.Title
	}
	return adminLayout(title, func(ctx context.Context, h *html) {
		h.raw(`<form method="post" action="/admin/save/" class="article-form">`)
		csrfField(h, csrfToken)
		hidden := func(name, value string) {
			h.raw(`<input type="hidden" name="`, name, `" value="`)
			h.text(value)
			h.raw(`">`)
		}
		input := func(label, name, typ, value string) {
			h.raw(`<label>`, label, ` <input type="`, typ, `" name="`, name, `" value="`)
			h.text(value)
			h.raw(`"></label>`)
		}
		hidden("id", a.ID)
		hidden("slug", a.Slug)
		input("제목", "title", "text", a.Title)
		input("날짜", "date", "date", formDate(a.Date))
		input("분류", "category", "text", a.Category)
		input("작성자", "author", "text", a.Author)
		input("작성자 이미지", "author_avatar", "url", a.AuthorAvatar)
		h.raw(`<label>요약 <textarea name="summary" rows="3">`)
		h.text(a.Summary)
		h.raw(`</textarea></label><label>이미지 (한 줄에 하나) <textarea name="image" rows="3">`)
		h.text(ImageFieldText(a.Image))
		h.raw(`</textarea></label><label>본문 <textarea name="content" rows="20">`)
		h.text(a.Content)
		h.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
		if a.Published {
			h.raw(` checked`)
		}
		h.raw(`> 공개</label><button type="submit">저장</button></form>`)
	})
}

// AdminImages lists uploaded images with an upload form.
func AdminImages(images []policydesk.Image, csrfToken string) templ.Component {
	return adminLayout("이미지", func(ctx context.Context, h *html) {
		h.raw(`<div id="images"><a href="/admin/">← 관리</a>`)
		h.raw(`<form method="post" action="/admin/images/upload/" enctype="multipart/form-data" hx-post="/admin/images/upload/" hx-target="#images" hx-swap="outerHTML">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="file" name="image" accept="image/*" required><button type="submit">업로드</button></form><ul class="image-grid">`)
		for _, img := range images {
			h.raw(`<li><img src="`)
			h.text(img.URL())
			h.raw(`" alt="" loading="lazy" width="160"><code>`)
			h.text(img.URL())
			h.raw(`</code><span>`, fmt.Sprintf("%d×%d", img.Width, img.Height), `</span>`)
			h.raw(`<button hx-delete="/admin/images/`, policydesk.PathEscape(img.Filename), `/" hx-target="#images" hx-swap="outerHTML" hx-headers="`)
			h.text(csrfHeaders(csrfToken))
			h.raw(`">삭제</button></li>`)
		}
		h.raw(`</ul></div>`)
	})
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return errorPage("404", "페이지를 찾을 수 없습니다.")
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return errorPage("500", "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.")
}

func errorPage(code, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!doctype html><html><head><meta charset="utf-8"><title>`, code, `</title></head><body><main class="error-page"><h1>`, code, `</h1><p>`)
		h.text(message)
		h.raw(`</p><a href="/">홈으로</a></main></body></html>`)
		return h.err
	})
}
