// Package config handles application configuration for manual-connections.
//
// The configuration lives in a TOML file with sections for the tunnel
// file location ([general]), the provider API endpoints and credentials
// ([provider]), tunnel identity preferences ([tunnel]), the firewall
// kill switch ([killswitch]), port forwarding ([port_forwarding]) and
// the long-running service mode ([service]). Missing sections and fields
// are filled with defaults after decoding, so a minimal config file is
// valid.
//
// Structural validation uses go-playground/validator with custom tags
// for region slugs, interface names, and listen addresses; all errors
// are collected and reported together with their TOML field paths.
//
// Note that this package is the configuration of the tool itself. The
// WireGuard tunnel config file it points at is owned by package wgconf.
package config
