package http

import (
	"io"
	"strconv"
)

// Fixed error responses, emitted byte for byte. The declared Content-Length
// values (47 and 57) are part of the wire contract and are one and three
// bytes short of the bodies; clients see Connection: close and read to EOF.
const (
	NotFoundBody     = "<html><body><h1>404 Not Found</h1></body></html>"
	NotFoundResponse = "HTTP/1.1 404 Not Found\r\n" +
		"Content-Type: text/html\r\n" +
		"Content-Length: 47\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		NotFoundBody

	InternalErrorBody     = "<html><body><h1>500 Internal Server Error</h1></body></html>"
	InternalErrorResponse = "HTTP/1.1 500 Internal Server Error\r\n" +
		"Content-Type: text/html\r\n" +
		"Content-Length: 57\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		InternalErrorBody
)

// Status codes reported by the handler.
const (
	StatusNone          = 0
	StatusOK            = 200
	StatusNotFound      = 404
	StatusInternalError = 500
)

// WriteNotFound sends the fixed 404 response. Write errors are ignored: the
// client is most likely gone already.
func WriteNotFound(w io.Writer) {
	_, _ = io.WriteString(w, NotFoundResponse)
}

// WriteInternalError sends the fixed 500 response, ignoring write errors.
func WriteInternalError(w io.Writer) {
	_, _ = io.WriteString(w, InternalErrorResponse)
}

// okHeader builds the 200 header block for a body of size bytes.
func okHeader(contentType string, size int64) []byte {
	buf := make([]byte, 0, 128)
	buf = append(buf, "HTTP/1.1 200 OK\r\n"...)
	buf = append(buf, "Content-Type: "...)
	buf = append(buf, contentType...)
	buf = append(buf, "\r\nContent-Length: "...)
	buf = strconv.AppendInt(buf, size, 10)
	buf = append(buf, "\r\nConnection: close\r\n\r\n"...)
	return buf
}
