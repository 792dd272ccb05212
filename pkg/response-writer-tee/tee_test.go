package tee

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWritesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	saver := NewResponseSaver(rr, 0)

	saver.Header().Set("Content-Type", "text/test")
	saver.WriteHeader(http.StatusTeapot)
	saver.Write([]byte("Hello world"))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("Status code is %d", rr.Code)
	}
	if body := rr.Body.String(); body != "Hello world" {
		t.Fatalf("body is %s", body)
	}
	if ct := rr.Result().Header.Get("Content-Type"); ct != "text/test" {
		t.Fatalf("Content-Type is %s", ct)
	}
}

func TestRecordsResponse(t *testing.T) {
	saver := NewResponseSaver(httptest.NewRecorder(), 0)
	saver.Header().Set("Content-Type", "text/test")
	saver.Write([]byte("Hello "))
	saver.Write([]byte("world"))

	if !saver.Recorded() {
		t.Fatal("Response not recorded")
	}
	if saver.StatusCode() != http.StatusOK {
		t.Fatalf("Status code is %d", saver.StatusCode())
	}
	if body := string(saver.Body()); body != "Hello world" {
		t.Fatalf("Recorded body is %s", body)
	}
	if ct := saver.HeaderSnapshot().Get("Content-Type"); ct != "text/test" {
		t.Fatalf("Recorded Content-Type is %s", ct)
	}
}

func TestHeaderSnapshotTakenAtWriteHeader(t *testing.T) {
	saver := NewResponseSaver(httptest.NewRecorder(), 0)
	saver.Header().Set("X-Before", "yes")
	saver.WriteHeader(http.StatusOK)
	saver.Header().Set("X-After", "yes")

	if saver.HeaderSnapshot().Get("X-Before") != "yes" {
		t.Fatal("Header written before WriteHeader missing from snapshot")
	}
	if saver.HeaderSnapshot().Get("X-After") != "" {
		t.Fatal("Header written after WriteHeader leaked into snapshot")
	}
}

func TestRepeatedWriteHeaderIgnored(t *testing.T) {
	rr := httptest.NewRecorder()
	saver := NewResponseSaver(rr, 0)
	saver.WriteHeader(http.StatusNotFound)
	saver.WriteHeader(http.StatusOK)

	if saver.StatusCode() != http.StatusNotFound {
		t.Fatalf("Status code is %d", saver.StatusCode())
	}
}

func TestBufferLimit(t *testing.T) {
	rr := httptest.NewRecorder()
	saver := NewResponseSaver(rr, 8)
	saver.Write([]byte("this is longer than eight bytes"))

	if saver.Recorded() {
		t.Fatal("Overflowing response still recorded")
	}
	// the client response is unaffected
	if body := rr.Body.String(); body != "this is longer than eight bytes" {
		t.Fatalf("body is %s", body)
	}
}

func TestMarkBypassed(t *testing.T) {
	saver := NewResponseSaver(httptest.NewRecorder(), 0)
	saver.Write([]byte("Hello world"))
	saver.MarkBypassed()

	if saver.Recorded() || !saver.Bypassed() {
		t.Fatal("Bypass not registered")
	}
	if len(saver.Body()) != 0 {
		t.Fatal("Recorded body kept after bypass")
	}
}
