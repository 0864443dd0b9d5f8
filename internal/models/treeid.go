package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FallbackTreePrefix is used when an institution name yields no usable
// A-Z characters (e.g. fully non-Latin names).
const FallbackTreePrefix = "TRE"

var trailingDigits = regexp.MustCompile(`\d+$`)

// TreePrefix derives the 3-letter identifier prefix for an institution:
// upper-case the name, strip everything outside A-Z, truncate to 3.
func TreePrefix(institution string) string {
	upper := strings.ToUpper(institution)
	var b strings.Builder
	for _, r := range upper {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return FallbackTreePrefix
	}
	return b.String()
}

// NextTreeID returns the next identifier in an institution's sequence given
// the ids already issued under the prefix. The numeric suffix is the
// trailing-digit run of each id; the next id is max+1 zero-padded to three
// digits (wider sequences keep their natural width).
func NextTreeID(prefix string, existingIDs []string) string {
	maxSeq := 0
	for _, id := range existingIDs {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		match := trailingDigits.FindString(id)
		if match == "" {
			continue
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxSeq+1)
}
