package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
)

// Hash returns a stable fingerprint of everything in a table declaration
// that affects a conformance check. Code and missing-code order is not
// significant; column order is.
func Hash(t Table) string {
	canon := t
	canon.Name = strings.TrimSpace(t.Name)
	canon.ObjectName = strings.TrimSpace(t.ObjectName)
	canon.Encoding = strings.ToLower(strings.TrimSpace(t.Encoding))
	canon.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		c.Codes = sortedCopy(c.Codes)
		c.MissingCodes = sortedCopy(c.MissingCodes)
		canon.Columns[i] = c
	}

	// Marshalling plain structs of strings, runes and bools cannot fail.
	b, _ := json.Marshal(canon)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
