// Package rules holds the operator-maintained exceptions the pairing engine
// consults: certificate subjects allowed to have no matching private key.
package rules

import "regexp"

// KnownMissingPrivateKeyCerts is the default allowlist of certificate
// subjects expected to have no matching private key in the cluster (e.g.
// externally-issued trust anchors).
var KnownMissingPrivateKeyCerts = NewAllowlist(
	[]string{
		"CN=kube-apiserver-lb-signer",
		"CN=kube-apiserver-localhost-signer",
		"CN=kube-apiserver-service-network-signer",
	},
	[]string{
		`^CN=.*-signer$`,
	},
)

// Allowlist implements cryptograph.Allowlist: a certificate subject is
// allowed to have no private key if it matches a literal subject or one of
// the configured regexes.
type Allowlist struct {
	literals map[string]struct{}
	patterns []*regexp.Regexp
}

// NewAllowlist compiles literals and regex patterns into an Allowlist.
// Patterns that fail to compile are dropped; a caller that needs to know
// about a bad pattern should compile it itself first.
func NewAllowlist(literals []string, patterns []string) *Allowlist {
	a := &Allowlist{literals: make(map[string]struct{}, len(literals))}
	for _, l := range literals {
		a.literals[l] = struct{}{}
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		a.patterns = append(a.patterns, re)
	}
	return a
}

// Allows reports whether subject is allowed to be missing its private key.
func (a *Allowlist) Allows(subject string) bool {
	if _, ok := a.literals[subject]; ok {
		return true
	}
	for _, re := range a.patterns {
		if re.MatchString(subject) {
			return true
		}
	}
	return false
}
