package github

import (
	"net/http"
	"regexp"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// NextLink extracts the rel="next" URL from a response's Link header.
// Returns empty string when there is no next page.
func NextLink(header http.Header) string {
	return linkWithRel(header.Get("Link"), "next")
}

// linkWithRel returns the URL carrying the given rel in a Link header.
func linkWithRel(linkHeader, rel string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) == 3 && matches[2] == rel {
			return matches[1]
		}
	}
	return ""
}
