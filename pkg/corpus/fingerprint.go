/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fingerprint.go
Description: Content fingerprints of document sequences
*/

package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Fingerprint hashes the canonical JSON encoding of docs in order.
// encoding/json sorts map keys, so equal documents always hash equally.
func Fingerprint(docs []any) (string, error) {
	h := sha256.New()
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("fingerprint document %d: %w", i, err)
		}
		h.Write(data)
		h.Write([]byte{'\n'})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
