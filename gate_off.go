//go:build snapdump_off

package snapdump

// Enabled reports whether dumps are emitted. Build without the snapdump_off tag to
// emit dumps.
const Enabled = false
