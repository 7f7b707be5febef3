package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeService struct {
	status     *TunnelStatus
	statusErr  error
	connectErr error
	port       *PortInfo
	hasPort    bool

	disconnected bool
}

func (f *fakeService) Connect(ctx context.Context) (*TunnelStatus, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.status.Connected = true
	return f.status, nil
}

func (f *fakeService) Disconnect() error {
	f.disconnected = true
	f.status.Connected = false
	return nil
}

func (f *fakeService) Status() (*TunnelStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeService) ForwardedPort() (*PortInfo, bool) {
	return f.port, f.hasPort
}

func newTestServer(service ConnectionService) *httptest.Server {
	return httptest.NewServer(NewRouter(service, VersionInfo{Version: "test"}))
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		t.Fatalf("failed to decode data field: %v", err)
	}
}

func TestGetStatus(t *testing.T) {
	service := &fakeService{
		status: &TunnelStatus{Connected: true, Interface: "pia", Region: "de_berlin"},
	}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}

	var status TunnelStatus
	decodeData(t, resp, &status)
	if !status.Connected || status.Region != "de_berlin" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestGetPort_NotForwarded(t *testing.T) {
	service := &fakeService{status: &TunnelStatus{Interface: "pia"}}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/port")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want 404", resp.StatusCode)
	}
}

func TestGetPort_Forwarded(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	service := &fakeService{
		status:  &TunnelStatus{Interface: "pia"},
		port:    &PortInfo{Port: 34567, ExpiresAt: &expires},
		hasPort: true,
	}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/port")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var port PortInfo
	decodeData(t, resp, &port)
	if port.Port != 34567 {
		t.Errorf("port = %d, want 34567", port.Port)
	}
}

func TestConnectAndDisconnect(t *testing.T) {
	service := &fakeService{status: &TunnelStatus{Interface: "pia"}}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/connect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var status TunnelStatus
	decodeData(t, resp, &status)
	if !status.Connected {
		t.Error("expected connected status after connect")
	}

	resp2, err := http.Post(ts.URL+"/api/v1/disconnect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()

	if !service.disconnected {
		t.Error("disconnect was not delegated to the service")
	}
}

func TestConnect_ServiceError(t *testing.T) {
	service := &fakeService{
		status:     &TunnelStatus{Interface: "pia"},
		connectErr: fmt.Errorf("no credentials"),
	}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/connect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status code = %d, want 500", resp.StatusCode)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Error.Code != ErrCodeServiceError {
		t.Errorf("error code = %s", errResp.Error.Code)
	}
	if !strings.Contains(errResp.Error.Message, "no credentials") {
		t.Errorf("error message = %q", errResp.Error.Message)
	}
}

func TestHealth(t *testing.T) {
	service := &fakeService{status: &TunnelStatus{Interface: "pia"}}
	ts := newTestServer(service)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var health HealthResponse
	decodeData(t, resp, &health)
	if !health.Healthy || health.Version.Version != "test" {
		t.Errorf("unexpected health response: %+v", health)
	}
}
