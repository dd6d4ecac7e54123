package value

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// The version suffix leaves room for algorithm changes.
const (
	DomainValue    = "tracksync/value/v1"
	DomainSnapshot = "tracksync/snapshot/v1"
	DomainScenario = "tracksync/scenario/v1"
)

// hashWithDomain computes SHA-256(domain + 0x00 + data).
// The null separator keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the content hash of v.
func Hash(v Value) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash value: %w", err)
	}
	return hashWithDomain(DomainValue, data), nil
}

// SnapshotHash returns the content hash of an ordered output snapshot.
// Two snapshots hash equally only if they hold equal values in the same
// order.
func SnapshotHash(items List) (string, error) {
	data, err := MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	return hashWithDomain(DomainSnapshot, data), nil
}

// ScenarioHash returns the content hash of a scenario file.
func ScenarioHash(data []byte) string {
	return hashWithDomain(DomainScenario, data)
}
