// Package model defines the shared data types of the streamer.
//
// Conventions:
//   - Prices: float64, as received from the upstream feed
//   - Volumes: int64 share counts
//   - Wire JSON: snake_case, matching the downstream subscriber protocol
package model
