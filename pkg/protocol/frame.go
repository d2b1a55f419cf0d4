package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeImagePayload turns a capture payload into raw encoded image
// bytes. The simulator sends either a data URI
// ("data:image/png;base64,....") or bare base64.
func DecodeImagePayload(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("image payload missing")
	}
	b64 := payload
	if strings.HasPrefix(payload, "data:image") {
		idx := strings.IndexByte(payload, ',')
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		b64 = payload[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return raw, nil
}

// EncodeImagePayload wraps encoded PNG bytes in the data URI form the
// browser simulator uses.
func EncodeImagePayload(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
