package blog

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/tags"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// renderRSS writes the feed for one tag page.
func (a *App) renderRSS(c echo.Context, info tags.Info, entries []content.Entry) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		link := BuildURL(base, string(e.Collection), e.ID)
		items = append(items, rssItem{
			Title:       e.Data.Title,
			Link:        link,
			Description: e.Data.Description,
			PubDate:     e.Data.PubDate.Format(time.RFC1123Z),
			GUID:        link,
			Categories:  e.Data.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name + " | " + info.Tag,
			Link:        BuildURL(base, "tags", info.Slug),
			Description: "Posts and notes tagged " + info.Tag,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
