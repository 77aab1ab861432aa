// Package cli provides the interactive vehicle registration client.
//
// It wires configuration, the registry API client, the photo storage
// backend and the submission coordinator behind a small REPL. A background
// watcher pings the registry and shows whether it is reachable.
//
// Commands:
//   - list / incomplete: browse records
//   - show <id>: print one record
//   - new: enter a registration and its four photos, then submit it
//   - resume <id>: continue an incomplete registration
//   - retry: re-submit the last failed submission, uploading only the
//     photos that did not make it
//   - flag <id> <stage>: mark one section complete
//   - delete <id>: remove a record
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
