// Package wgconf maintains the WireGuard tunnel configuration file.
//
// The configuration is a sectioned "Key = Value" text ([Interface] and
// [Peer] sections). When a config file already exists it may carry
// operator customizations (AllowedIPs overrides, PostUp hooks, comments),
// so the package never regenerates the file from scratch. Instead it
// merges the fields obtained from a key exchange into the existing
// document: the first occurrence of each field is updated in place with
// its original spacing preserved, unrelated lines are kept untouched and
// in order, and fields that do not exist yet are inserted right after
// their anchor line (a section header or a sibling field).
//
// When no file exists a fresh document is rendered from a template
// instead; no merge is involved.
//
// Merging is a pure in-memory transform. Persistence goes through an
// atomic whole-file replace (write to a temp file, rename into place) so
// an interrupted run never leaves a half-written config behind.
package wgconf
