package cryptoutil

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/pem"
	"io"
)

func pemEncodeCert(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func cryptoRandReader() io.Reader {
	return rand.Reader
}

func sha1Sum(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}
