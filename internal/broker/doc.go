// Package broker wraps the Alpaca REST API endpoints the streamer
// exposes as pass-throughs.
//
// Endpoints used:
//   - Trading API (assets): https://paper-api.alpaca.markets
//   - Market data API (bars): https://data.alpaca.markets
//
// Authentication is header-based (APCA-API-KEY-ID / APCA-API-SECRET-KEY).
package broker
