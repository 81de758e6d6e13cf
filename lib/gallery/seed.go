// Copyright 2026 The IRIS Gallery Authors
// SPDX-License-Identifier: Apache-2.0

// Package gallery seeds the gallery data file the application expects
// at startup. The application reads the file unconditionally, so a
// fresh deployment must contain an empty gallery rather than nothing.
package gallery

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Seed ensures the gallery data file at path exists and holds a JSON
// array.
//
// When the file is absent it is created containing an empty array.
// When it exists, its content is validated: operators hand-edit the
// file during gallery migrations, so the check reads it as JSONC
// (comments and trailing commas allowed) and only requires that it
// decodes to an array. A file that decodes to anything else, or not
// at all, fails the bootstrap here instead of crashing the
// application mid-startup.
//
// Seed is idempotent: running it against an already-seeded file
// changes nothing.
func Seed(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte("[]\n"), 0644); writeErr != nil {
			return fmt.Errorf("seeding gallery data file %s: %w", path, writeErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading gallery data file %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return fmt.Errorf("gallery data file %s is not a JSON array: %w", path, err)
	}
	return nil
}
