package leap

import (
	"regexp"
	"strconv"
)

// hrefIDPattern extracts the first numeric path segment following a type
// name, e.g. "/zone/842" or "/area/117/status" both yield 842 and 117.
// Anchored at the start: Go's regexp has no separate re.match-style
// leading-anchor semantics, so the anchor is explicit here.
var hrefIDPattern = regexp.MustCompile(`^/(?:\D+)/(\d+)(?:/\D+)?`)

// IDFromHref extracts the integer id from a LEAP href such as "/zone/842"
// or "/area/117/status". The second return value is false if no id could
// be determined, e.g. for "" or "/nonumber".
func IDFromHref(href string) (int, bool) {
	match := hrefIDPattern.FindStringSubmatch(href)
	if match == nil {
		return 0, false
	}

	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// HRef is a bare reference to another resource, carried inline in many
// message bodies (e.g. {"href": "/area/5"}).
type HRef struct {
	Href string `json:"href"`
}

// ID returns the integer id embedded in the href, if any.
func (h HRef) ID() (int, bool) {
	return IDFromHref(h.Href)
}
