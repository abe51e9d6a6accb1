package images

import (
	"encoding/base64"
	"strings"
)

// DataURI converts a raw image payload into a data URI, sniffing the format
// from the base64 prefix. JPEG payloads encode to "/9j/" (0xFF 0xD8), PNG to
// "iVBOR"; anything else is assumed to be SVG.
func DataURI(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	switch {
	case strings.HasPrefix(encoded, "/9j/"):
		return "data:image/jpeg;base64," + encoded
	case strings.HasPrefix(encoded, "iVBOR"):
		return "data:image/png;base64," + encoded
	default:
		return "data:image/svg+xml;base64," + encoded
	}
}
