// Package store persists corner points for mapped elements.
//
// # Architecture
//
// Storage is split in two layers:
//   - [Backend]: a byte-oriented key/value store with optional TTL
//   - [Points]: the point codec on top, which namespaces keys and encodes the
//     four corners as eight comma-separated numbers
//
// Backends are available for different deployments:
//   - [NullBackend]: stores nothing, for ephemeral sessions and tests
//   - [MemoryBackend]: in-process map, for tests and the embedded server
//   - [FileBackend]: JSON files under ~/.local/share/cornerpin, for the CLI
//   - [RedisBackend]: shared storage for multi-instance servers
//   - [MongoBackend]: document storage with TTL index
//
// # Value Format
//
// Points are stored under "__cornerpin-" + key as
//
//	x1,y1,x2,y2,x3,y3,x4,y4
//
// in top-left, top-right, bottom-left, bottom-right order. The format is not
// versioned. Values that fail to parse are reported as missing.
//
// # Errors
//
// Transient backend failures are wrapped with [Retryable] and retried by
// [Points] with exponential backoff. Use errors.Is with [ErrNetwork] to detect
// an unreachable backend.
//
// # Usage
//
//	backend, err := store.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	points := store.NewPoints(backend, store.PointsOptions{TTL: cfg.TTL})
//	defer points.Close()
//
//	q, ok, err := points.Get(ctx, "projector")
package store
