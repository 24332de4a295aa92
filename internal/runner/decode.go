package runner

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// decodeText turns captured process output into a valid UTF-8 string.
// Invalid byte sequences become U+FFFD instead of failing the call.
func decodeText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
