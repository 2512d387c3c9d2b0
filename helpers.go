package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/folio/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostURL is the canonical URL of a post.
func PostURL(base string, p content.Post) string {
	return BuildURL(base, "blog", p.ID)
}

// PhotoURL is the canonical URL of a photo.
func PhotoURL(base string, p content.Photo) string {
	return BuildURL(base, "gallery", p.ID)
}

// FormatDate renders a YYYY-MM-DD date as "January 2, 2006". Dates that do
// not parse are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(content.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Name,
		"url":         BuildURL(site.URL),
		"description": site.Description,
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.Post, site Site) string {
	postURL := PostURL(site.URL, post)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.Date,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJsonLD(data)
}

// ScholarlyArticleJsonLD returns a JSON-LD string listing publications.
func ScholarlyArticleJsonLD(pubs []content.Publication) string {
	items := make([]map[string]interface{}, 0, len(pubs))
	for _, p := range pubs {
		item := map[string]interface{}{
			"@type":         "ScholarlyArticle",
			"headline":      p.Title,
			"author":        p.Authors,
			"datePublished": p.Year,
			"isPartOf":      p.Venue,
		}
		if p.DOIURL != "" {
			item["sameAs"] = p.DOIURL
		}
		items = append(items, item)
	}
	return marshalJsonLD(map[string]interface{}{
		"@context": "https://schema.org",
		"@graph":   items,
	})
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
