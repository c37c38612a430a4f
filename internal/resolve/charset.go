package resolve

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeBody converts fetched bytes to UTF-8 text, honoring an explicit
// charset in the Content-Type header. Anything unrecognized falls back to
// interpreting the bytes as UTF-8.
func decodeBody(b []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(b)
	}
	cs := strings.TrimSpace(params["charset"])
	if cs == "" || strings.EqualFold(cs, "utf-8") {
		return string(b)
	}
	enc, err := htmlindex.Get(cs)
	if err != nil || enc == nil {
		return string(b)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}
