// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest provides fingerprinting for the dependency
// manifest file. The bootstrap never parses the manifest — its format
// belongs to the package tool — but it records a content digest in
// the run record so operators can see whether the dependency set
// changed between runs.
package manifest

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest of the manifest file content.
type Digest [32]byte

// digestDomainKey is a fixed 32-byte key for BLAKE3 keyed hashing.
// Domain separation keeps manifest digests from colliding with any
// other hash the project may compute over the same bytes. The value
// is the ASCII encoding of the domain name, zero-padded to 32 bytes;
// changing it invalidates digests recorded by earlier runs.
var digestDomainKey = [32]byte{
	'i', 'r', 'i', 's', '.', 'b', 'o', 'o', 't', 's', 't', 'r', 'a', 'p', '.',
	'm', 'a', 'n', 'i', 'f', 'e', 's', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// File reads the manifest at path and returns its content digest.
// A missing file is reported as-is (testable with os.IsNotExist) so
// the installer can distinguish "no manifest" from a read failure.
func File(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return Bytes(data), nil
}

// Bytes computes the manifest-domain digest of data.
func Bytes(data []byte) Digest {
	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees, so the error path is unreachable.
	hasher, err := blake3.NewKeyed(digestDomainKey[:])
	if err != nil {
		panic("manifest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Stat verifies the manifest exists and is a regular file. Returns a
// descriptive error otherwise; the underlying os error is wrapped so
// os.IsNotExist-style checks still work via errors.Is.
func Stat(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("dependency manifest %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("dependency manifest %s is a directory", path)
	}
	return nil
}
