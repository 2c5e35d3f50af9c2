// Package storage provides append-only record sinks for decoded records.
//
// Every sink writes rows in the same fixed column order (receivedAt,
// clientId, timestamp, meta, answers, sequence, pointer, smartScore,
// confidenceScore, testPing-marker) and keeps a separate stream of error
// records for failed requests.
//
// Available backends:
//   - FileSink: CSV files in a local directory
//   - SQLiteSink: local SQLite database, optionally sealing payload columns
//   - S3Sink: JSON objects in Amazon S3 or a compatible service
//   - IPFSSink: JSON objects added to an IPFS node
//   - MultiSink: fan-out over several backends
//
// Sinks are created from location URIs through the Factory.
package storage
