package web

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/trailhunt/internal/platform/i18n/catalog"
)

const (
	// langParam is the query parameter used to select a language.
	langParam = "lang"
	// langCookieName stores the participant's language preference.
	langCookieName = "hunt_lang"
)

var (
	supportedTags   = mustSupportedTags()
	languageMatcher = language.NewMatcher(supportedTags)
)

func mustSupportedTags() []language.Tag {
	locales := catalog.Default().Locales()
	tags := make([]language.Tag, 0, len(locales))
	// The base locale must come first so the matcher falls back to it.
	for _, locale := range locales {
		if locale == catalog.BaseLocale {
			tags = append(tags, language.MustParse(locale))
		}
	}
	for _, locale := range locales {
		if locale != catalog.BaseLocale {
			tags = append(tags, language.MustParse(locale))
		}
	}
	return tags
}

// resolveTag determines the best language tag for the request. The bool
// indicates whether the lang query param should be persisted as a cookie.
func resolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return supportedTags[0], false
	}

	if langValue := strings.TrimSpace(r.URL.Query().Get(langParam)); langValue != "" {
		if tag, ok := parseTag(langValue); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(langCookieName); err == nil {
		if tag, ok := parseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			matched, _, _ := languageMatcher.Match(tags...)
			return canonicalTag(matched), false
		}
	}

	return supportedTags[0], false
}

// parseTag accepts only tags that match a supported locale exactly.
func parseTag(value string) (language.Tag, bool) {
	parsed, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Tag{}, false
	}
	for _, tag := range supportedTags {
		if tag == parsed {
			return tag, true
		}
	}
	return language.Tag{}, false
}

// canonicalTag snaps a matcher result back onto a supported tag. The
// matcher may return a refined variant of the supported tag it chose.
func canonicalTag(matched language.Tag) language.Tag {
	base := matched
	for {
		for _, tag := range supportedTags {
			if tag == base {
				return tag
			}
		}
		parent := base.Parent()
		if parent == language.Und || parent == base {
			return supportedTags[0]
		}
		base = parent
	}
}

// localizer resolves the request locale, optionally persists a cookie,
// and returns a message printer with the resolved locale string.
func localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, setCookie := resolveTag(r)
	if setCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     langCookieName,
			Value:    tag.String(),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
	}
	return message.NewPrinter(tag), tag.String()
}
