package blog

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	maxItems           = 10
	previewLimit       = 200
	previewPlaceholder = "Read more on Medium..."
	isoMillis          = "2006-01-02T15:04:05.000Z"
)

var (
	ErrNoItems      = errors.New("feed contains no items")
	ErrNoValidItems = errors.New("feed items are missing required fields")
)

var (
	itemRx        = regexp.MustCompile(`<item>([\s\S]*?)</item>`)
	titleRx       = regexp.MustCompile(`<title><!\[CDATA\[(.*?)\]\]></title>`)
	linkRx        = regexp.MustCompile(`<link>(.*?)</link>`)
	pubDateRx     = regexp.MustCompile(`<pubDate>(.*?)</pubDate>`)
	descriptionRx = regexp.MustCompile(`(?s)<description><!\[CDATA\[(.*?)\]\]></description>`)
	tagRx         = regexp.MustCompile(`<[^>]*>`)
	entityRx      = regexp.MustCompile(`&[^;]+;`)
)

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// ParseResult carries the parsed items, or Err when nothing usable came out.
type ParseResult struct {
	Items   []Item
	Skipped int
	Err     error
}

func (r ParseResult) OK() bool { return r.Err == nil && len(r.Items) > 0 }

// ParseItems extracts up to ten items from an RSS document. Items without a
// title, link or readable pubDate are skipped.
func ParseItems(raw []byte) ParseResult {
	blocks := itemRx.FindAllSubmatch(raw, -1)
	if len(blocks) == 0 {
		return ParseResult{Err: ErrNoItems}
	}
	res := ParseResult{Items: make([]Item, 0, maxItems)}
	for _, block := range blocks {
		if len(res.Items) >= maxItems {
			break
		}
		it, ok := parseItem(block[1])
		if !ok {
			res.Skipped++
			continue
		}
		res.Items = append(res.Items, it)
	}
	if len(res.Items) == 0 {
		res.Err = ErrNoValidItems
	}
	return res
}

func parseItem(content []byte) (Item, bool) {
	title := titleRx.FindSubmatch(content)
	link := linkRx.FindSubmatch(content)
	pubDate := pubDateRx.FindSubmatch(content)
	if title == nil || link == nil || pubDate == nil {
		return Item{}, false
	}
	published, ok := parsePubDate(string(pubDate[1]))
	if !ok {
		return Item{}, false
	}
	preview := ""
	if desc := descriptionRx.FindSubmatch(content); desc != nil {
		preview = makePreview(string(desc[1]))
	}
	if preview == "" {
		preview = previewPlaceholder
	}
	return Item{
		Title:       string(title[1]),
		URL:         string(link[1]),
		PublishedAt: published.UTC().Format(isoMillis),
		Preview:     preview,
	}, true
}

// rfc822Zones are the named zones RFC 822 allows. time.Parse only knows the
// offset of an abbreviation that matches the local zone and reads the rest
// as UTC.
var rfc822Zones = map[string]int{
	"UT": 0, "GMT": 0, "UTC": 0, "Z": 0,
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
}

func parsePubDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return withNamedZone(t), true
		}
	}
	return time.Time{}, false
}

// withNamedZone re-anchors a time parsed from an abbreviated zone on that
// zone's fixed offset. Numeric offsets pass through untouched.
func withNamedZone(t time.Time) time.Time {
	name, _ := t.Zone()
	hours, ok := rfc822Zones[name]
	if !ok {
		return t
	}
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, mo, d, h, mi, sec, t.Nanosecond(), time.FixedZone(name, hours*3600))
}

func makePreview(html string) string {
	text := tagRx.ReplaceAllString(html, "")
	text = entityRx.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > previewLimit {
		runes = runes[:previewLimit]
	}
	return string(runes) + "..."
}
