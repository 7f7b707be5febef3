// Package utils provides general-purpose utility functions for manual-connections.
//
// This package contains small helpers shared across the application:
//
//   - Path utilities: resolve paths relative to the config directory
//   - File utilities: safe file closing
//
// # Example Usage
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath("ca.rsa.4096.crt", "/etc/manual-connections")
//	// Returns: /etc/manual-connections/ca.rsa.4096.crt
//
// The utilities in this package are designed to be simple, focused, and
// reusable across different parts of the application.
package utils
