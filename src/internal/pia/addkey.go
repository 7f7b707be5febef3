package pia

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/utils"
)

// AddKey registers a WireGuard public key with a VPN server and returns
// the tunnel parameters assigned by it. The server is addressed by IP,
// so the TLS handshake verifies the certificate against the provider CA
// using the server common name from the server list.
func (c *Client) AddKey(server ServerEntry, token, publicKey string) (*KeyExchangeReply, error) {
	client, err := c.serverClientFor(server.CN)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("pt", token)
	query.Set("pubkey", publicKey)

	endpoint := url.URL{
		Scheme:   "https",
		Host:     net.JoinHostPort(server.IP, strconv.Itoa(KeyExchangePort)),
		Path:     "/addKey",
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequest(http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.NewAPIError("failed to create key exchange request", err)
	}
	// The URL carries the IP, the certificate carries the CN.
	req.Host = server.CN

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewAPIError(
			fmt.Sprintf("key exchange with %s (%s) failed", server.CN, server.IP), err)
	}
	defer utils.CloseOrWarn(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read key exchange response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(
			fmt.Sprintf("key exchange returned status %d", resp.StatusCode), nil)
	}

	var reply KeyExchangeReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, errors.NewAPIError("failed to parse key exchange response", err)
	}
	if reply.Status != "OK" {
		return nil, errors.NewAPIError(
			fmt.Sprintf("key exchange rejected: status %q", reply.Status), nil)
	}
	if reply.PeerIP == "" || reply.ServerKey == "" || reply.ServerIP == "" || reply.ServerPort == 0 {
		return nil, errors.NewAPIError("key exchange response is missing tunnel parameters", nil)
	}

	return &reply, nil
}
