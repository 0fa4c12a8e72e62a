package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rawadhq/rawad/core/registration"
	testutil "github.com/rawadhq/rawad/tests"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds a submission form request from fields.
func newMultipartRequest(t *testing.T, path string, fields []testutil.MultipartField) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range fields {
		if f.Filename == "" {
			if err := mw.WriteField(f.Field, f.Value); err != nil {
				t.Fatalf("newMultipartRequest() failed: %v", err)
			}
			continue
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		header.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("newMultipartRequest() failed: %v", err)
		}
		if _, err = part.Write([]byte(f.Value)); err != nil {
			t.Fatalf("newMultipartRequest() failed: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("newMultipartRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

// parseEventStream decodes each SSE data frame of body into an Event.
func parseEventStream(t *testing.T, body string) []registration.Event {
	t.Helper()

	var events []registration.Event
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		data := strings.TrimPrefix(frame, "data: ")
		var evt registration.Event
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			t.Fatalf("parseEventStream() failed on %q: %v", frame, err)
		}
		events = append(events, evt)
	}
	return events
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}
