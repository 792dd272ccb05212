// Package tee buffers a response for cache storage while streaming it to
// the client unchanged.
package tee

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
	"time"
)

// ResponseSaver is a wrapper around http.ResponseWriter that records the
// status, headers and body of the response it forwards. The handler must
// observe a response writer identical to an uncached invocation; recording
// is a side channel.
//
// Two conditions make the recording unusable for storage: the body
// exceeding the buffer limit, and a connection hijack, which bypasses
// buffered writing entirely. Handlers using other zero-copy transfer
// mechanisms signal that explicitly to the middleware instead.
type ResponseSaver struct {
	rw           http.ResponseWriter
	b            bytes.Buffer
	snapshot     http.Header
	status       int
	wroteHeaders bool
	maxBuffer    int64
	overflowed   bool
	bypassed     bool
	CreatedAt    time.Time
}

// NewResponseSaver returns a new ResponseSaver writing through to w.
// Bodies growing beyond maxBuffer bytes stop being recorded (the response
// is still streamed); a non-positive maxBuffer means no limit.
func NewResponseSaver(w http.ResponseWriter, maxBuffer int64) *ResponseSaver {
	return &ResponseSaver{
		rw:        w,
		maxBuffer: maxBuffer,
		CreatedAt: time.Now(),
	}
}

// Header implements http.ResponseWriter.
func (t *ResponseSaver) Header() http.Header {
	return t.rw.Header()
}

// WriteHeader implements http.ResponseWriter. The headers are snapshotted
// here, since the handler may keep mutating the map afterwards.
func (t *ResponseSaver) WriteHeader(statusCode int) {
	if t.wroteHeaders {
		return
	}
	t.wroteHeaders = true
	t.status = statusCode
	t.snapshot = t.rw.Header().Clone()
	t.rw.WriteHeader(statusCode)
}

// Write implements http.ResponseWriter.
func (t *ResponseSaver) Write(p []byte) (int, error) {
	if !t.wroteHeaders {
		t.WriteHeader(http.StatusOK)
	}
	n, err := t.rw.Write(p)
	if n > 0 && !t.overflowed && !t.bypassed {
		if t.maxBuffer > 0 && int64(t.b.Len()+n) > t.maxBuffer {
			t.overflowed = true
			t.b.Reset()
		} else {
			t.b.Write(p[:n])
		}
	}
	return n, err
}

// Flush implements http.Flusher if the underlying writer does.
func (t *ResponseSaver) Flush() {
	if f, ok := t.rw.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to the caller; a hijacked response cannot be
// recorded.
func (t *ResponseSaver) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := t.rw.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support hijacking")
	}
	t.bypassed = true
	t.b.Reset()
	return hj.Hijack()
}

// StatusCode returns the status code of the response, defaulting to 200
// when the handler never wrote one explicitly.
func (t *ResponseSaver) StatusCode() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

// HeaderSnapshot returns the response headers as they were sent.
func (t *ResponseSaver) HeaderSnapshot() http.Header {
	if t.snapshot == nil {
		return t.rw.Header().Clone()
	}
	return t.snapshot
}

// Body returns the recorded response body.
func (t *ResponseSaver) Body() []byte {
	return t.b.Bytes()
}

// Recorded reports whether the body was fully captured and may be stored.
func (t *ResponseSaver) Recorded() bool {
	return !t.overflowed && !t.bypassed
}

// Bypassed reports whether the body skipped buffered writing entirely.
func (t *ResponseSaver) Bypassed() bool {
	return t.bypassed
}

// MarkBypassed flags the response as having skipped buffered writing and
// drops whatever was recorded so far.
func (t *ResponseSaver) MarkBypassed() {
	t.bypassed = true
	t.b.Reset()
}
