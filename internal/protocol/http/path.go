package http

import "strings"

// IndexFile is served for extensionless request paths.
const IndexFile = "index.html"

// ResolvePath applies the directory-index fallback to a raw request path.
//
// Paths with an extension are returned unchanged. Otherwise "/" (or any
// path of at most one byte, including the empty path of a malformed request)
// becomes "/index.html", and any other path P becomes P + "/index.html".
// Nothing is cleaned: "/a/" resolves to "/a//index.html".
func ResolvePath(raw string) string {
	if extension(raw) != "" {
		return raw
	}
	if len(raw) <= 1 {
		return "/" + IndexFile
	}
	return raw + "/" + IndexFile
}

// extension returns the extension of the last path element, dot included.
//
// A leading dot does not start an extension, so "/.config" has none, and the
// special names "." and ".." have none either. A trailing slash means the last
// element is empty.
func extension(p string) string {
	name := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		name = p[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}

	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return ""
	}
	return name[dot:]
}
