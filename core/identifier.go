package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// MaxIDLength is the longest identifier EscapeID will emit.
const MaxIDLength = 512

// ProfessorUnitID returns the id of a professor's summary unit:
// the name with an "_info" suffix and spaces replaced by underscores.
func ProfessorUnitID(name string) string {
	return strings.ReplaceAll(name+"_info", " ", "_")
}

// ReviewUnitID returns the id of a review unit: name, subject and date joined
// by underscores, spaces replaced by underscores.
//
// Two reviews of the same professor with the same subject and date share an
// id, so the later upsert replaces the earlier one. Source dates are often day
// granular, which makes such collisions possible.
func ReviewUnitID(name, subject, date string) string {
	return strings.ReplaceAll(name+"_"+subject+"_"+date, " ", "_")
}

// UnitID derives the store identifier for a unit kind. Review ids take the
// subject and date as discriminators. The result is passed through EscapeID.
func UnitID(kind UnitKind, name string, discriminators ...string) string {
	var id string
	switch kind {
	case UnitKindReview:
		var subject, date string
		if len(discriminators) > 0 {
			subject = discriminators[0]
		}
		if len(discriminators) > 1 {
			date = discriminators[1]
		}
		id = ReviewUnitID(name, subject, date)
	default:
		id = ProfessorUnitID(name)
	}
	return EscapeID(id)
}

// EscapeID makes an id safe for stores that only accept printable ASCII.
// Bytes outside printable ASCII, and '%' itself, are percent-encoded. Ids
// longer than MaxIDLength are cut and suffixed with a BLAKE2b digest of the
// full id. Printable ASCII ids within the limit are returned unchanged.
func EscapeID(id string) string {
	var b strings.Builder
	escaped := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x20 || c > 0x7e || c == '%' {
			if !escaped {
				b.Grow(len(id) + 8)
				b.WriteString(id[:i])
				escaped = true
			}
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		if escaped {
			b.WriteByte(c)
		}
	}

	out := id
	if escaped {
		out = b.String()
	}
	if len(out) <= MaxIDLength {
		return out
	}

	digest := idDigest(id)
	return out[:MaxIDLength-len(digest)-1] + "_" + digest
}

func idDigest(id string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))
}
