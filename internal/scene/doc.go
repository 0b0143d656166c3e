// Package scene lays parsed models out on a render surface and keeps the
// camera framing them. It is structured into small files by concern:
//
//   - object.go: Object (parsed model) and the Parser contract.
//   - surface.go: Surface contract and View (camera and key light pose).
//   - memory.go: MemorySurface, a thread-safe in-memory Surface.
//   - composer.go: Composer, which places batches and discards stale parses.
//   - metrics.go: Prometheus collectors for parse latency.
//
// A Composer belongs to one goroutine (the owner loop). Parsing runs
// elsewhere through Config.Go and results come back through Config.Post.
package scene
