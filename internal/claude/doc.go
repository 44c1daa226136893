// Package claude manages the hook entries webhook-notifier needs in Claude
// Code settings files.
//
// The package supports:
//   - Loading settings.json while preserving unknown fields
//   - Checking whether the notifier is registered for each hook event
//   - Adding and removing hook commands idempotently
//   - Atomic file writes to prevent corruption
package claude
