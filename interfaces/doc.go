// Package interfaces defines the collaborator contracts for the envelope
// ingest service, separating interface definitions from implementations.
//
// # Record Sink
//
// RecordSink receives decoded survey records as append-only rows, plus an
// error-record variant used when the pipeline fails. SinkFactory creates
// sinks from location URIs (file://, sqlite://, s3://, ipfs://) and can
// aggregate several backends behind a single fan-out sink.
//
// # Configuration Store
//
// ConfigStore resolves named configuration values, in particular the RSA key
// material (PRIVATE_KEY_PEM, PUBLIC_KEY_PEM). The decryption pipeline itself
// never reaches into a store: the resolved private key is passed in by the
// caller, keeping the pipeline pure and independently testable.
//
// # Record Types
//
// PlaintextRecord is the structured record recovered from an envelope. All of
// its fields are optional; absent fields forward to sinks as blank
// equivalents rather than causing rejection.
package interfaces
