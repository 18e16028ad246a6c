package history

import (
	"regexp"
	"strings"
)

// Toolchain script output announces created contracts in a few formats
// across versions; all of them are line-oriented.
var (
	deployedToPattern = regexp.MustCompile(`(?m)^\s*(?:Deployed to|Contract Address):\s*(0x[0-9a-fA-F]{40})\s*$`)
	txHashPattern     = regexp.MustCompile(`(?m)^\s*(?:Transaction hash|Hash):\s*(0x[0-9a-fA-F]{64})\s*$`)
	contractPattern   = regexp.MustCompile(`(?m)^\s*Contract:\s*([A-Za-z_][A-Za-z0-9_]*)\s*$`)
)

// ParseDeployments extracts deployed contract records from raw script
// output. Addresses and hashes are paired in order of appearance; a
// missing hash or contract name leaves the field empty rather than
// dropping the record.
func ParseDeployments(output string) []Deployment {
	addrs := captures(deployedToPattern, output)
	hashes := captures(txHashPattern, output)
	names := captures(contractPattern, output)

	var deployments []Deployment
	for i, addr := range addrs {
		d := Deployment{Address: strings.ToLower(addr)}
		if i < len(hashes) {
			d.TxHash = strings.ToLower(hashes[i])
		}
		if i < len(names) {
			d.Contract = names[i]
		}
		deployments = append(deployments, d)
	}
	return deployments
}

func captures(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}
