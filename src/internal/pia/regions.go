package pia

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/Penguin-Guru/manual-connections/src/internal/utils"
)

const pingConcurrency = 16

// GetRegions fetches and parses the provider server list.
// The server list response is a JSON document on the first line followed
// by a signature block, so everything after the first newline is ignored.
func (c *Client) GetRegions() ([]Region, error) {
	req, err := http.NewRequest(http.MethodGet, c.serverListURL, nil)
	if err != nil {
		return nil, errors.NewAPIError("failed to create server list request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAPIError("server list request failed", err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(
			fmt.Sprintf("server list endpoint returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError("failed to read server list response", err)
	}

	payload := string(body)
	if idx := strings.IndexByte(payload, '\n'); idx >= 0 {
		payload = payload[:idx]
	}

	var list ServerList
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, errors.NewAPIError("failed to parse server list", err)
	}
	if len(list.Regions) == 0 {
		return nil, errors.NewAPIError("server list contains no regions", nil)
	}

	return list.Regions, nil
}

// FindRegion returns the region with the given ID.
func FindRegion(regions []Region, id string) (*Region, error) {
	for i := range regions {
		if regions[i].ID == id {
			return &regions[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeConfig,
		fmt.Sprintf("region %q not found in server list", id))
}

// PingRegions measures TCP connect latency to the meta server of each
// region and returns the regions that responded within maxLatency,
// sorted fastest first. Regions without servers are skipped.
func PingRegions(regions []Region, maxLatency time.Duration) []Region {
	type result struct {
		region  Region
		latency time.Duration
		err     error
	}

	jobs := make(chan Region)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < pingConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for region := range jobs {
				latency, err := pingRegion(region, maxLatency)
				results <- result{region: region, latency: latency, err: err}
			}
		}()
	}

	go func() {
		for _, region := range regions {
			if len(region.Servers.Meta) == 0 || len(region.Servers.WG) == 0 {
				continue
			}
			jobs <- region
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var reachable []Region
	for res := range results {
		if res.err != nil {
			log.Debugf("region %s did not respond within %s", res.region.ID, maxLatency)
			continue
		}
		res.region.Latency = res.latency
		reachable = append(reachable, res.region)
	}

	sort.Slice(reachable, func(i, j int) bool {
		return reachable[i].Latency < reachable[j].Latency
	})
	return reachable
}

func pingRegion(region Region, timeout time.Duration) (time.Duration, error) {
	addr := net.JoinHostPort(region.Servers.Meta[0].IP, "443")
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return 0, err
	}
	utils.CloseOrWarn(conn)
	return time.Since(start), nil
}

// SelectRegion picks the target region: the named one when id is set,
// otherwise the lowest-latency region within maxLatency. When port
// forwarding is required, regions that do not support it are excluded
// from automatic selection.
func SelectRegion(regions []Region, id string, maxLatency time.Duration, needPortForward bool) (*Region, error) {
	if id != "" {
		region, err := FindRegion(regions, id)
		if err != nil {
			return nil, err
		}
		if needPortForward && !region.PortForward {
			return nil, errors.New(errors.ErrCodeConfig,
				fmt.Sprintf("region %q does not support port forwarding", id))
		}
		return region, nil
	}

	reachable := PingRegions(regions, maxLatency)
	for i := range reachable {
		if needPortForward && !reachable[i].PortForward {
			continue
		}
		log.Infof("selected region %s (%s, latency %s)",
			reachable[i].ID, reachable[i].Name, reachable[i].Latency.Round(time.Millisecond))
		return &reachable[i], nil
	}

	return nil, errors.NewNetworkError(
		fmt.Sprintf("no suitable region responded within %s", maxLatency), nil)
}
