// Package pia provides a client for the Private Internet Access API.
//
// This package covers the full provider API surface needed to establish
// a WireGuard connection: authentication, server list retrieval, region
// selection, key exchange with VPN servers, and port forwarding.
//
// # Features
//
//   - Token retrieval with a 24-hour on-disk cache
//   - Server list download and region lookup
//   - Concurrent latency probing for automatic region selection
//   - WireGuard key exchange (addKey) against VPN servers
//   - Port forwarding signature and periodic port binding
//
// # TLS
//
// Calls to the central API use system roots. Calls to individual VPN
// servers are addressed by IP, so they use TLS pinned to the provider
// CA certificate with the server common name from the server list.
//
// # Example Usage
//
// Authenticating and exchanging keys:
//
//	client := pia.NewClient(tokenURL, serverListURL, caFile, nil)
//	token, err := client.CachedTokenFor(user, pass, cacheFile)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	regions, err := client.GetRegions()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	region, err := pia.SelectRegion(regions, "", 100*time.Millisecond, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := client.AddKey(region.Servers.WG[0], token, publicKey)
package pia
