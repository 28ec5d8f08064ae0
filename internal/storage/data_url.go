package storage

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/klass-lk/postgateway/internal/errorlib"
)

var inlineImagePattern = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

type InlineImage struct {
	Subtype string
	Data    []byte
}

func (i InlineImage) ContentType() string {
	return "image/" + i.Subtype
}

// ParseInlineImage decodes a data:image/<subtype>;base64,<payload> URL.
// Payloads with missing or partial padding are accepted.
func ParseInlineImage(dataURL string) (InlineImage, error) {
	m := inlineImagePattern.FindStringSubmatch(dataURL)
	if m == nil {
		return InlineImage{}, errorlib.ErrInvalidImageEncoding.New()
	}
	data, err := decodeBase64(m[2])
	if err != nil {
		return InlineImage{}, errorlib.ErrInvalidImageEncoding.New().Wrap(err)
	}
	return InlineImage{Subtype: m[1], Data: data}, nil
}

func decodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}
