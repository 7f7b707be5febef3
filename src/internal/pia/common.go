package pia

import (
	"net/http"
	"time"
)

// Default ports of the key-exchange and port-forwarding endpoints on
// the provider's VPN servers.
const (
	KeyExchangePort    = 1337
	PortForwardingPort = 19999
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type defaultHTTPClient struct {
	client *http.Client
}

func newDefaultHTTPClient() *defaultHTTPClient {
	return &defaultHTTPClient{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *defaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// TokenReply is the response of the token endpoint.
type TokenReply struct {
	Token string `json:"token"`
}

// KeyExchangeReply is the response of a key-exchange (addKey) call on a
// VPN server. The tunnel identity is assembled from these fields.
type KeyExchangeReply struct {
	Status     string   `json:"status"`
	ServerKey  string   `json:"server_key"`
	ServerPort int      `json:"server_port"`
	ServerIP   string   `json:"server_ip"`
	ServerVIP  string   `json:"server_vip"`
	PeerIP     string   `json:"peer_ip"`
	PeerPubkey string   `json:"peer_pubkey"`
	DNSServers []string `json:"dns_servers"`
}

// ServerEntry is one server of a region.
type ServerEntry struct {
	IP string `json:"ip"`
	CN string `json:"cn"`
}

// Region describes one region of the provider server list.
type Region struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	AutoRegion  bool   `json:"auto_region"`
	PortForward bool   `json:"port_forward"`
	Geo         bool   `json:"geo"`
	Servers     struct {
		Meta []ServerEntry `json:"meta"`
		WG   []ServerEntry `json:"wg"`
	} `json:"servers"`

	// Latency is filled in by PingRegions; zero means not measured.
	Latency time.Duration `json:"-"`
}

// ServerList is the decoded provider server list.
type ServerList struct {
	Regions []Region `json:"regions"`
}

// SignatureReply is the response of the getSignature port-forwarding call.
type SignatureReply struct {
	Status    string `json:"status"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// BindReply is the response of the bindPort port-forwarding call.
type BindReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PortForwardPayload is the decoded content of SignatureReply.Payload.
type PortForwardPayload struct {
	Token     string    `json:"token"`
	Port      int       `json:"port"`
	ExpiresAt time.Time `json:"expires_at"`
}
