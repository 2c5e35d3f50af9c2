// Package httpserver implements the HTTP surface of the envelope ingest
// service.
//
// The API exposes two operations: POST /api/envelope submits an encrypted
// envelope for decryption and storage, and GET /api/public-key returns the
// wrapping public key in PEM form. Client-attributable failures (malformed
// base64, wrong key or IV sizes, missing fields) return 400; cryptographic
// and configuration failures return 500. Response bodies never include key
// material or decrypted payload bytes.
//
// The server also provides health endpoints (/livez, /readyz), load balancer
// draining (/drain, /undrain), optional pprof under /debug, and a separate
// metrics listener.
package httpserver
