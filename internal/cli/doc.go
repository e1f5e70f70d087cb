// Package cli implements the ssv command-line interface.
//
// Commands are thin: each parses flags, loads settings, builds a
// host.Manager and renders the result. All file work happens in
// internal/host.
//
//	ssv generate --host H   - Create a key pair and conf.d fragment
//	ssv list [--long]       - List managed hosts
//	ssv show --host H       - Show one host's fragment and key
//	ssv remove --host H     - Delete a host's fragment and keys
//	ssv doctor [--fix]      - Diagnose the ~/.ssh layout
//	ssv copy-id --host H    - Install a host's public key remotely
//
// # Flag Handling
//
// Global flags (--config, --verbose, --json, --no-color) live on the root
// command. NewRootCmd builds a fresh tree each call, so tests can run
// commands without sharing flag state.
//
// # Output
//
// Human output goes to the command's stdout with ui styling; progress and
// warnings go to stderr. With --json every command writes a JSONEnvelope to
// stdout, including failures. Run maps any error to exit status 1.
package cli
