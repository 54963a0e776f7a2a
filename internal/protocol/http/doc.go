// Package http implements the per-connection half of staticd: read one
// request line, resolve it to a file under the content root, and stream the
// file back or answer with a fixed error page.
//
// # Pipeline
//
//	Handle(conn)
//	  ReadRequest      one Read into a pooled buffer, no reassembly
//	  ParseRequestLine whitespace tokens: method, path, version
//	  ResolvePath      directory-index fallback for extensionless paths
//	  ServeFile        stat -> 404, open -> 500, headers, body
//
// Every response carries "Connection: close" and the connection is closed when
// Handle returns, on every path.
//
// # Known limitations
//
// A request split across TCP segments, or longer than the read buffer, is
// parsed from whatever the first Read returned. Headers are never parsed and
// the method is ignored. Paths are not cleaned here; see pkg/content for the
// opt-in containment layer.
package http
