package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

// ResponseAssertion provides fluent assertions for HTTP responses
type ResponseAssertion struct {
	t        *testing.T
	resp     *http.Response
	body     string
	bodyRead bool
}

// AssertResponse creates a new ResponseAssertion for the given response
func AssertResponse(t *testing.T, resp *http.Response) *ResponseAssertion {
	t.Helper()
	return &ResponseAssertion{
		t:    t,
		resp: resp,
	}
}

// readBody lazily reads the response body
func (ra *ResponseAssertion) readBody() string {
	if !ra.bodyRead {
		defer ra.resp.Body.Close()
		body, err := io.ReadAll(ra.resp.Body)
		if err != nil {
			ra.t.Fatalf("Failed to read response body: %v", err)
		}
		ra.body = string(body)
		ra.bodyRead = true
	}
	return ra.body
}

// Status asserts the response has the expected status code
func (ra *ResponseAssertion) Status(code int) *ResponseAssertion {
	ra.t.Helper()
	if ra.resp.StatusCode != code {
		ra.t.Errorf("Expected status %d, got %d", code, ra.resp.StatusCode)
	}
	return ra
}

// StatusOK asserts the response has status 200
func (ra *ResponseAssertion) StatusOK() *ResponseAssertion {
	return ra.Status(http.StatusOK)
}

// ContentType asserts the response has the expected content type
func (ra *ResponseAssertion) ContentType(expected string) *ResponseAssertion {
	ra.t.Helper()
	ct := ra.resp.Header.Get("Content-Type")
	if !strings.Contains(ct, expected) {
		ra.t.Errorf("Expected Content-Type containing %q, got %q", expected, ct)
	}
	return ra
}

// ContentTypeJSON asserts the response is JSON
func (ra *ResponseAssertion) ContentTypeJSON() *ResponseAssertion {
	return ra.ContentType("application/json")
}

// ContentTypeCSV asserts the response is CSV
func (ra *ResponseAssertion) ContentTypeCSV() *ResponseAssertion {
	return ra.ContentType("text/csv")
}

// Contains asserts the body contains the given substring
func (ra *ResponseAssertion) Contains(needle string) *ResponseAssertion {
	ra.t.Helper()
	if !strings.Contains(ra.readBody(), needle) {
		ra.t.Errorf("Expected body to contain %q\nBody: %s", needle, ra.readBody())
	}
	return ra
}

// ContainsAll asserts the body contains all given substrings
func (ra *ResponseAssertion) ContainsAll(needles ...string) *ResponseAssertion {
	ra.t.Helper()
	for _, needle := range needles {
		ra.Contains(needle)
	}
	return ra
}

// NotContains asserts the body does not contain the given substring
func (ra *ResponseAssertion) NotContains(needle string) *ResponseAssertion {
	ra.t.Helper()
	if strings.Contains(ra.readBody(), needle) {
		ra.t.Errorf("Expected body to not contain %q", needle)
	}
	return ra
}

// ValidJSON asserts the body parses as JSON and returns the decoded value
func (ra *ResponseAssertion) ValidJSON() map[string]interface{} {
	ra.t.Helper()
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(ra.readBody()), &decoded); err != nil {
		ra.t.Fatalf("Expected valid JSON object: %v\nBody: %s", err, ra.readBody())
	}
	return decoded
}
