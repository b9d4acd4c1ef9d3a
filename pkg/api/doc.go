// Package api defines the wire-level contracts of the config flow engine:
// flow instances, step schemas, versioned flow definitions, step results, and
// the response shape of the external hub's flow API. Everything here is
// JSON-serializable; handlers and stores share these types.
package api
