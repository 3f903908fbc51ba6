package work

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// auditDigest fingerprints an e-sign audit trail as hex BLAKE2b-256 over its JSON encoding.
// Object keys are encoded in sorted order, so equal trails always hash alike.
func auditDigest(trail any) (string, error) {
	if trail == nil {
		return "", nil
	}
	data, err := json.Marshal(trail)
	if err != nil {
		return "", validationErrorf("eSignAuditTrail is not valid JSON: %v", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
