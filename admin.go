package policydesk

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/policydesk/content"
)

const maxSeed = 100

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminForm(Article{Published: true}, CsrfToken(c)))
}

func (a *App) handleAdminArticle(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	article, err := a.Store.GetArticleAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminForm(article, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("admin login failed", zap.String("ip", ip))
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSave creates or updates an article. A blank slug is derived
// from title, date and a fresh id; a blank author is assigned from the pool.
func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Title+is+required.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().In(a.Config.Location()).Format(time.RFC3339)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		if _, err := time.Parse(time.RFC3339, date); err != nil {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
		}
	}

	id := strings.TrimSpace(c.FormValue("id"))
	if id == "" {
		id = a.ids.Generate()
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = content.MakeSlug(title, dateOnly(date), id)
	}
	author := strings.TrimSpace(c.FormValue("author"))
	if author == "" {
		author = a.authors.Assign()
	}

	var image any
	if urls := FilterEmpty(strings.Split(c.FormValue("image"), "\n")); len(urls) == 1 {
		image = urls[0]
	} else if len(urls) > 1 {
		image = urls
	}

	if err := a.Store.SaveArticle(Article{
		ID:           id,
		Slug:         slug,
		Title:        title,
		Date:         date,
		Category:     strings.TrimSpace(c.FormValue("category")),
		Summary:      c.FormValue("summary"),
		Content:      c.FormValue("content"),
		Image:        image,
		Author:       author,
		AuthorAvatar: strings.TrimSpace(c.FormValue("author_avatar")),
		Published:    c.FormValue("published") != "",
	}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteArticle(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminSeed(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	n, err := strconv.Atoi(c.FormValue("count"))
	if err != nil || n < 1 {
		n = 10
	}
	if n > maxSeed {
		n = maxSeed
	}
	if _, err := a.Seed(n); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "seeded")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	articles, err := a.Store.ListAllArticles()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.Presenter.PresentAll(articles), msg, CsrfToken(c)))
}

// dateOnly returns the calendar date of an RFC 3339 or YYYY-MM-DD string.
func dateOnly(date string) string {
	if len(date) >= len(time.DateOnly) {
		return date[:len(time.DateOnly)]
	}
	return date
}
