package handler

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/url"
	"strings"
)

var errMalformedDataURI = errors.New("malformed data URI")

// decodeDataURI splits an RFC 2397 data URI into its media type and payload.
// The media type defaults to text/plain as the RFC requires.
func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errMalformedDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errMalformedDataURI
	}

	isBase64 := false
	if h, found := strings.CutSuffix(header, ";base64"); found {
		header = h
		isBase64 = true
	}

	contentType := "text/plain"
	if header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			return "", nil, errMalformedDataURI
		}
		contentType = mediaType
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return "", nil, errMalformedDataURI
			}
		}
		return contentType, data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, errMalformedDataURI
	}
	return contentType, []byte(unescaped), nil
}
