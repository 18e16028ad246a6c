// Package history is the sqlite-backed deployment ledger at
// ~/.kiln/history.db. Every broadcast run is recorded with its outcome
// and any contract addresses parsed from the toolchain output. Ledger
// failures are advisory: callers report them as warnings and never let
// them mask a deployment result.
package history
