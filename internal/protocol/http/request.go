package http

import (
	"bufio"
	"bytes"
	"io"
)

// RequestLine holds the three request line tokens. Any of them may be empty
// when the client sent fewer tokens.
type RequestLine struct {
	Method  string
	Path    string
	Version string
}

// ReadRequest performs exactly one Read from r into buf and returns the bytes
// read. A request that arrives in several segments is truncated to the first.
//
// n == 0 means the client sent nothing usable (EOF, reset, or error) and the
// caller should close without responding. Data returned together with an
// error is still handed back.
func ReadRequest(r io.Reader, buf []byte) ([]byte, error) {
	n, err := r.Read(buf)
	if n <= 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		return nil, err
	}
	return buf[:n], nil
}

// ParseRequestLine extracts method, path and version as the first three
// whitespace-separated tokens of raw. Only ASCII whitespace separates tokens
// (space, \t, \n, \v, \f, \r), so line breaks count and a bare
// "GET\r\nHost: x" yields the path "Host:", while bytes such as a UTF-8
// no-break space stay inside the token. Everything after the third token is
// ignored.
func ParseRequestLine(raw []byte) RequestLine {
	var tokens [3]string

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, len(raw)+1), len(raw)+1)
	scanner.Split(scanASCIIWords)

	for i := 0; i < len(tokens) && scanner.Scan(); i++ {
		tokens[i] = scanner.Text()
	}

	return RequestLine{
		Method:  tokens[0],
		Path:    tokens[1],
		Version: tokens[2],
	}
}

// scanASCIIWords is a bufio.SplitFunc like bufio.ScanWords that only treats
// ASCII whitespace as a separator.
func scanASCIIWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isASCIISpace(data[start]) {
		start++
	}

	for i := start; i < len(data); i++ {
		if isASCIISpace(data[i]) {
			return i + 1, data[start:i], nil
		}
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
