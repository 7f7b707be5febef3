package pia

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
)

// Client talks to the provider's central API and to individual VPN
// servers. Calls against VPN servers use TLS pinned to the provider CA
// with the server common name, because the servers are addressed by IP.
type Client struct {
	httpClient    HTTPClient
	tokenURL      string
	serverListURL string
	caFile        string

	// serverClientFor builds the pinned client for a VPN server call.
	// Overridable in tests.
	serverClientFor func(serverName string) (HTTPClient, error)
}

// NewClient creates a provider API client.
// If httpClient is nil, a default client with a request timeout is used.
func NewClient(tokenURL, serverListURL, caFile string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = newDefaultHTTPClient()
	}
	c := &Client{
		httpClient:    httpClient,
		tokenURL:      tokenURL,
		serverListURL: serverListURL,
		caFile:        caFile,
	}
	c.serverClientFor = c.newPinnedClient
	return c
}

// newPinnedClient returns an HTTP client that only accepts certificates
// signed by the provider CA and matching the given server name.
func (c *Client) newPinnedClient(serverName string) (HTTPClient, error) {
	caCert, err := os.ReadFile(c.caFile)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "failed to read CA certificate", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.New(errors.ErrCodeConfig,
			fmt.Sprintf("no certificates found in %s", c.caFile))
	}

	return &defaultHTTPClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs:    pool,
					ServerName: serverName,
				},
			},
		},
	}, nil
}
