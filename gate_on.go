//go:build !snapdump_off

package snapdump

// Enabled reports whether dumps are emitted. Build with the snapdump_off tag to turn
// every emitting Dumper method into a no-op.
const Enabled = true
