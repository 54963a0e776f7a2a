package http

import (
	"fmt"
	"io"

	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/content"
)

// TransferResult describes how a ServeFile call ended.
type TransferResult struct {
	// Status is the status line sent (200, 404, 500).
	Status int

	// ContentLength is the advertised body size (200 only).
	ContentLength int64

	// BytesSent counts body bytes written; less than ContentLength when the
	// transfer was cut short.
	BytesSent int64

	// Err is the failure that stopped the transfer, nil on success. For 404
	// and 500 it is the stat or open error.
	Err error
}

// ServeFile writes the file at root+path to w.
//
//   - stat fails: 404 page
//   - open fails: 500 page
//   - header write fails: give up before the body
//   - body write fails: give up, the client sees a truncated body
//
// The file is closed on every path. Nothing is retried.
func ServeFile(w io.Writer, root *content.Root, path string) TransferResult {
	fullPath := root.FullPath(path)

	info, err := root.Stat(path)
	if err != nil {
		logger.Debug("File not found: %s: %v", fullPath, err)
		WriteNotFound(w)
		return TransferResult{Status: StatusNotFound, Err: err}
	}

	file, err := root.Open(path)
	if err != nil {
		logger.Warn("Can't read %s: %v", fullPath, err)
		WriteInternalError(w)
		return TransferResult{Status: StatusInternalError, Err: err}
	}
	defer func() { _ = file.Close() }()

	result := TransferResult{Status: StatusOK, ContentLength: info.Size()}

	if _, err := w.Write(okHeader(ContentType(path), info.Size())); err != nil {
		logger.Debug("Couldn't send headers for %s: %v", fullPath, err)
		result.Err = fmt.Errorf("send headers: %w", err)
		return result
	}

	// CopyN hands a LimitedReader over the file to w.ReadFrom, which on a
	// TCP connection with an *os.File underneath becomes sendfile(2).
	sent, err := io.CopyN(w, file, info.Size())
	result.BytesSent = sent
	if err != nil {
		logger.Debug("Couldn't send the whole file %s (%d/%d bytes): %v",
			fullPath, sent, info.Size(), err)
		result.Err = fmt.Errorf("send body: %w", err)
	}

	return result
}
