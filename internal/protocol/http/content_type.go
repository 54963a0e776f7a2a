package http

import "strings"

// DefaultContentType is returned for any path without a known extension.
const DefaultContentType = "text/plain"

// contentTypes is checked in order; the first matching suffix wins.
var contentTypes = []struct {
	suffix      string
	contentType string
}{
	{".html", "text/html"},
	{".htm", "text/html"},
	{".css", "text/css"},
	{".js", "application/javascript"},
	{".json", "application/json"},
	{".png", "image/png"},
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".webp", "image/webp"},
}

// ContentType maps a resolved request path to its MIME type with a literal,
// case-sensitive suffix test. "/logo.PNG" is text/plain.
func ContentType(path string) string {
	for _, ct := range contentTypes {
		if strings.HasSuffix(path, ct.suffix) {
			return ct.contentType
		}
	}
	return DefaultContentType
}
