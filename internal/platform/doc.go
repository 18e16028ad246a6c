// Package platform provides cross-platform filesystem permission helpers.
// On Unix systems chmod applies directly; on Windows permission bits are
// ignored because the OS does not support them.
package platform
