// Package session is the selection controller of the viewer. One event loop
// goroutine owns the catalog, the selection, the outstanding request and the
// scene composer; everything else talks to it by posting events. It is
// structured into small files by concern:
//
//   - session.go: Session type, event loop, public intents.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: Selection and Snapshot.
//   - clock.go: Clock abstraction used for the request timeout.
//   - link.go: adapter turning channel callbacks into loop events.
//   - frames.go: inbound frame dispatch (catalog, model, error).
//   - selection.go: state machine transitions and scene recomputation.
//   - pending.go: the single outstanding get_by_id request and its timer.
//   - status.go: status line and error reporting.
//   - status_report.go: published snapshots, subscriptions and HTTP views.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//   - errors.go: error helpers (IsStopped, IsInvalidSelection).
//   - metrics.go: Prometheus collectors.
//
// Every selection change and every scene recomputation bumps an epoch.
// Timers and parse jobs carry the epoch they were started under; results
// from an older epoch are dropped on arrival.
package session
