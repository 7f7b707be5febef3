package pia

import (
	"encoding/base64"
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

// GetSignature requests a port forwarding signature from the connected
// VPN server. The call must go through the established tunnel, so the
// server is addressed by its tunnel-internal virtual IP.
func (c *Client) GetSignature(serverVIP, serverCN, token string) (*SignatureReply, *PortForwardPayload, error) {
	query := url.Values{}
	query.Set("token", token)

	reply := &SignatureReply{}
	if err := c.portForwardCall(serverVIP, serverCN, "/getSignature", query, reply); err != nil {
		return nil, nil, err
	}
	if reply.Status != "OK" {
		return nil, nil, errors.NewPortForwardError(
			fmt.Sprintf("signature request rejected: status %q", reply.Status), nil)
	}

	payload, err := DecodePayload(reply.Payload)
	if err != nil {
		return nil, nil, err
	}
	return reply, payload, nil
}

// BindPort binds the forwarded port on the VPN server. The binding
// expires after a few minutes, so it has to be refreshed periodically
// with the same payload and signature until the payload itself expires.
func (c *Client) BindPort(serverVIP, serverCN, payload, signature string) error {
	query := url.Values{}
	query.Set("payload", payload)
	query.Set("signature", signature)

	reply := &BindReply{}
	if err := c.portForwardCall(serverVIP, serverCN, "/bindPort", query, reply); err != nil {
		return err
	}
	if reply.Status != "OK" {
		return errors.NewPortForwardError(
			fmt.Sprintf("port bind rejected: %s", reply.Message), nil)
	}
	return nil
}

// DecodePayload decodes the base64 JSON payload of a signature reply.
func DecodePayload(payload string) (*PortForwardPayload, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.NewPortForwardError("failed to decode signature payload", err)
	}
	var decoded PortForwardPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.NewPortForwardError("failed to parse signature payload", err)
	}
	if decoded.Port == 0 {
		return nil, errors.NewPortForwardError("signature payload contains no port", nil)
	}
	return &decoded, nil
}

func (c *Client) portForwardCall(serverVIP, serverCN, path string, query url.Values, out interface{}) error {
	client, err := c.serverClientFor(serverCN)
	if err != nil {
		return err
	}

	endpoint := url.URL{
		Scheme:   "https",
		Host:     net.JoinHostPort(serverVIP, strconv.Itoa(PortForwardingPort)),
		Path:     path,
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequest(http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return errors.NewPortForwardError("failed to create port forwarding request", err)
	}
	req.Host = serverCN

	resp, err := client.Do(req)
	if err != nil {
		return errors.NewPortForwardError(
			fmt.Sprintf("port forwarding call %s failed", path), err)
	}
	defer utils.CloseOrWarn(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewPortForwardError("failed to read port forwarding response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.NewPortForwardError(
			fmt.Sprintf("port forwarding call %s returned status %d", path, resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewPortForwardError("failed to parse port forwarding response", err)
	}
	return nil
}
