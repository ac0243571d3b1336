package cryptograph

import (
	"fmt"
	"io"
)

// Display prints the forest of cert-key pairs depth-first from every root
// (a pair with no signer), followed by every standalone private key
//. Intermediate-but-not-root pairs are not printed directly —
// only reached transitively through a root's signees — matching the
// upstream behavior verbatim.
func (c *ClusterCryptoObjects) Display(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, pair := range c.certKeyPairs {
		if pair.Signer == nil {
			displayPair(w, pair, 0)
		}
	}

	for _, priv := range c.privateKeys {
		fmt.Fprintf(w, "PrivateKey{locations=%s regenerated=%t}\n", priv.Locations, priv.Regenerated)
	}
}

func displayPair(w io.Writer, pair *CertKeyPair, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Fprintf(w, "%s%s\n", indent, pair)
	for _, signee := range pair.Signees {
		switch signee.Kind {
		case SigneeCertKeyPair:
			displayPair(w, signee.CertKeyPair, depth+1)
		case SigneeJwt:
			fmt.Fprintf(w, "%s  %s\n", indent, signee)
		}
	}
}
