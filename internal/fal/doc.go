// Package fal is a minimal client for the FAL AI queue API, covering what the
// SeedDream text-to-image endpoints need: submit a request, poll its status
// with logs enabled, and fetch the completed response.
//
// The client performs exactly one attempt per call and imposes no timeout of
// its own; cancellation comes from the caller's context, and retry policy, if
// any, belongs to the HTTP transport.
package fal
