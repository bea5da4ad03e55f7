package policydesk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/policydesk/viewport"
)

const relatedLimit = 4

func (a *App) handleHome(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	articles, err := a.Cache.ListArticles(category)
	if err != nil {
		return err
	}
	categories, err := a.Cache.ListCategories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.Config, a.Presenter.PresentAll(articles), category, categories))
}

func (a *App) handleArticle(c echo.Context) error {
	slug := c.Param("slug")
	article, err := a.Cache.GetArticle(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	// The related list is loaded by the client once it scrolls into view.
	related := viewport.New(nil, nil,
		viewport.WithSource("/fragments/related/"+PathEscape(slug)+"/"),
	)
	return Render(c, a.Views.Article(a.Config, a.Presenter.Present(article), related))
}

func (a *App) handleRelatedFragment(c echo.Context) error {
	slug := c.Param("slug")
	article, err := a.Cache.GetArticle(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	related := RelatedArticles(article, articles, relatedLimit)
	return Render(c, a.Views.RelatedList(a.Presenter.PresentAll(related)))
}

func (a *App) handlePage(c echo.Context) error {
	page, err := a.Pages.Get(c.Param("name"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	return Render(c, a.Views.Page(a.Config, page))
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func handleArticlesRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	if path := a.staticDir + "/robots.txt"; fileExists(path) {
		return c.File(path)
	}
	return c.String(http.StatusOK, fmt.Sprintf("User-agent: *\nDisallow: /admin/\nDisallow: /fragments/\n\nSitemap: %s\n",
		AbsoluteURL(a.Config.URL, "/sitemap.xml")))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
