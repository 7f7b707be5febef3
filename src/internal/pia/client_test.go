package pia

import (
	"io"
	"net/http"
	"strings"
)

type mockHTTPClient struct {
	handler  func(req *http.Request) (*http.Response, error)
	requests []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	return m.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// newTestClient returns a client whose plain and server-pinned calls both
// go through the given mock.
func newTestClient(mock *mockHTTPClient) *Client {
	c := NewClient("https://api.example.com/token", "https://serverlist.example.com/v6", "", mock)
	c.serverClientFor = func(serverName string) (HTTPClient, error) {
		return mock, nil
	}
	return c
}
