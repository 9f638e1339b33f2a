// Package auth provides authentication and authorisation for sensorgate.
//
// It implements a 2-tier role model (viewer → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens (HS256, validated by signature only)
//   - SQLite-backed user accounts
//
// Viewers can read telemetry and the identification record; admins can
// additionally update the identification record and manage users. The
// WebSocket stream uses single-use tickets minted from a valid access
// token, since browsers cannot set Authorization headers on WebSocket
// dials.
package auth
