// Package keystore stores deployment keys encrypted at rest under
// ~/.kiln/keystore/. Each account is a JSON file holding scrypt KDF
// parameters and an AES-256-GCM ciphertext, written with 0600
// permissions. Plaintext key material only ever exists in memory, on
// its way into the toolchain's child environment.
package keystore
