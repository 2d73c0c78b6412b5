// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Transmission desktop client.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like intervals, file names, and UI dimensions
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Common utility functions for file and formatting operations
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/rkost/transmission/common"
//
//	// Use constants
//	interval := common.RefreshInterval
//
//	// Use logger
//	common.LogInfo("Added torrent %s", name)
//
//	// Check errors
//	if errors.Is(err, common.ErrDuplicateTorrent) {
//	    // Handle the duplicate
//	}
package common
