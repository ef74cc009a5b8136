package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintNamespace versions the key format. Bumping it invalidates
// every existing entry, which is the intended way to bust the cache
// when the report shape or digest algorithm changes.
const fingerprintNamespace = "resume:v4"

// Fingerprint identifies one (resume document, job description) pair.
// SHA-256 is required rather than a checksum: the key is the only
// boundary between unrelated uploads, so collisions would leak one
// candidate's cached report to another.
type Fingerprint struct {
	DocDigest string
	JDDigest  string
}

// NewFingerprint hashes the raw document bytes and the job-description
// text independently. Identical inputs always produce identical
// fingerprints; any byte-level difference in either input changes it.
func NewFingerprint(doc []byte, jd string) Fingerprint {
	docSum := sha256.Sum256(doc)
	jdSum := sha256.Sum256([]byte(jd))

	return Fingerprint{
		DocDigest: hex.EncodeToString(docSum[:]),
		JDDigest:  hex.EncodeToString(jdSum[:]),
	}
}

// String renders the final key used in Redis/map:
// resume:v4:<DOC_SHA256_HEX>:<JD_SHA256_HEX>
func (f Fingerprint) String() string {
	return fingerprintNamespace + ":" + f.DocDigest + ":" + f.JDDigest
}
