package blog

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/tags"
	"github.com/mengkeat/blog/views"
)

func handleRootRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/tags/")
}

func (a *App) handleTagIndex(c echo.Context) error {
	infos, err := a.Cache.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.TagIndex(infos))
}

func (a *App) handleTagPage(c echo.Context) error {
	drafts := ShowDrafts(c)
	info, entries, err := a.Cache.Tagged(c.Request().Context(), c.Param("slug"), drafts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	toggle := views.DraftToggle{Enabled: drafts, CSRFToken: CsrfToken(c)}
	return Render(c, a.Views.TagPage(info, entries, toggle))
}

func (a *App) handleTagFeed(c echo.Context) error {
	info, entries, err := a.Cache.Tagged(c.Request().Context(), c.Param("slug"), false)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return a.renderRSS(c, info, entries)
}

func (a *App) handleSitemap(c echo.Context) error {
	infos, err := a.Cache.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, infos)
}

func (a *App) handleAPITags(c echo.Context) error {
	infos, err := a.Cache.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []tags.Info{}
	}
	return c.JSON(http.StatusOK, infos)
}

// handleRobots generates robots.txt pointing at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) handleDraftToggle(c echo.Context) error {
	on := !ShowDrafts(c)
	if err := setShowDrafts(c, on); err != nil {
		return err
	}
	a.Logger.Debug("draft preview toggled", zap.Bool("enabled", on))
	return c.Redirect(http.StatusSeeOther, safeReturnPath(c.FormValue("return")))
}

// safeReturnPath keeps redirects on this site.
func safeReturnPath(p string) string {
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(p, "//") {
		return "/tags/"
	}
	return u.RequestURI()
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
