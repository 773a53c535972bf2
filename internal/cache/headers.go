package cache

import (
	"net/http"
	"strconv"
	"strings"
)

// Durations in seconds per content class.
var Durations = struct {
	StaticAssets int
	Images       int
	APIData      int
	BlogData     int
	ProjectData  int
	ContactForm  int
}{
	StaticAssets: 31536000,
	Images:       31536000,
	APIData:      3600,
	BlogData:     1800,
	ProjectData:  86400,
	ContactForm:  0,
}

// HeaderPolicy tunes CacheControl. The zero value yields a public directive.
type HeaderPolicy struct {
	Private              bool
	Immutable            bool
	StaleWhileRevalidate int
	MustRevalidate       bool
}

func CacheControl(maxAge int, p HeaderPolicy) string {
	directives := make([]string, 0, 5)
	if p.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	directives = append(directives, "max-age="+strconv.Itoa(maxAge))
	if p.Immutable {
		directives = append(directives, "immutable")
	}
	if p.StaleWhileRevalidate > 0 {
		directives = append(directives, "stale-while-revalidate="+strconv.Itoa(p.StaleWhileRevalidate))
	}
	if p.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}
	return strings.Join(directives, ", ")
}

type Headers map[string]string

func policyHeaders(maxAge int, p HeaderPolicy) Headers {
	return Headers{"Cache-Control": CacheControl(maxAge, p)}
}

var (
	HeadersStaticAssets = policyHeaders(Durations.StaticAssets, HeaderPolicy{Immutable: true})
	HeadersImages       = policyHeaders(Durations.Images, HeaderPolicy{Immutable: true, StaleWhileRevalidate: 86400})
	HeadersAPIData      = policyHeaders(Durations.APIData, HeaderPolicy{StaleWhileRevalidate: 3600})
	HeadersBlogData     = policyHeaders(Durations.BlogData, HeaderPolicy{StaleWhileRevalidate: 1800})
	HeadersProjectData  = policyHeaders(Durations.ProjectData, HeaderPolicy{StaleWhileRevalidate: 86400})
	HeadersNoCache      = Headers{
		"Cache-Control": "no-store, no-cache, must-revalidate, proxy-revalidate",
		"Pragma":        "no-cache",
		"Expires":       "0",
	}
)

func ApplyHeaders(w http.ResponseWriter, h Headers) {
	for k, v := range h {
		w.Header().Set(k, v)
	}
}
