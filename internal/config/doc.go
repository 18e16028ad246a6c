// Package config manages user-level settings stored at ~/.kiln/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// toolchain binary overrides and the default network profile, and resolves
// the paths of the other per-user stores (keystore, deployment history).
package config
