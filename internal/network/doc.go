// Package network resolves named network profiles from the project
// manifest into concrete RPC endpoints. URL indirection through
// environment variables honors process env over the project .env file,
// so CI overrides always win.
package network
