// Package main (cmd/httpserver) implements the envelope ingest server.
//
// The server accepts encrypted envelopes over HTTP, runs them through the
// decryption validation pipeline (base64 validation, RSA key unwrap,
// AES-256-CBC decrypt, UTF-8 decode, JSON parse), and appends the recovered
// records to one or more configured sinks. It also serves the wrapping public
// key so clients can encrypt without out-of-band key distribution.
//
// Key material is resolved from a config store URI (env://, file://,
// vault://). Record sinks are configured as URIs as well and can fan out to
// several backends:
//
//	envelope-ingest --listen-addr=0.0.0.0:8080 \
//	    --config-store=env://?prefix=INGEST_ \
//	    --sink=sqlite://records.db?key=master-key \
//	    --sink=s3://access:secret@bucket/ingest?region=eu-west-1
//
// The server implements graceful shutdown on termination signals
// (SIGINT/SIGTERM) and supports health checks, load balancer draining,
// metrics collection, and optional profiling endpoints.
package main
