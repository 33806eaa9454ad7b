// Package generate implements the core of the SeedDream MCP server: parameter
// validation, size and aspect-ratio resolution, upstream invocation, local
// image persistence, and report composition.
//
// # Request lifecycle
//
// Every entity here is created within the scope of a single tool call and
// discarded once the textual report is returned. Nothing persists between
// calls except the files written to the output directory, which accumulate
// indefinitely.
//
// # Error taxonomy
//
// Operations fail with one of four typed errors: ValidationError (bad caller
// input, detected before any network call), ConfigError (missing credential,
// detected per call), UpstreamError (the remote call failed or returned zero
// images), and DownloadError (one image's local persistence failed, isolated
// to that image). Callers at the tool boundary convert all of them into
// reported error results; none of them crosses the boundary as a fault.
//
// # Concurrency
//
// A batch call fans out one upstream call per prompt concurrently and joins
// on all of them; outcomes are captured independently and a failure never
// cancels a sibling. Downloads within one prompt run sequentially in image
// order. The output directory is shared between concurrent batch writers, but
// filenames are unique per image and the directory create is idempotent.
package generate
