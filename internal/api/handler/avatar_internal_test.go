package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		uri         string
		wantType    string
		wantPayload string
		wantErr     bool
	}{
		{name: "base64 png", uri: "data:image/png;base64,aGVsbG8=", wantType: "image/png", wantPayload: "hello"},
		{name: "unpadded base64", uri: "data:image/webp;base64,aGVsbG8", wantType: "image/webp", wantPayload: "hello"},
		{name: "media type parameters", uri: "data:image/svg+xml;charset=utf-8;base64,PHN2Zy8+", wantType: "image/svg+xml", wantPayload: "<svg/>"},
		{name: "percent encoded", uri: "data:image/svg+xml,%3Csvg%2F%3E", wantType: "image/svg+xml", wantPayload: "<svg/>"},
		{name: "default media type", uri: "data:,hi", wantType: "text/plain", wantPayload: "hi"},
		{name: "not a data URI", uri: "https://cafe.test/a.png", wantErr: true},
		{name: "missing comma", uri: "data:image/png;base64", wantErr: true},
		{name: "bad base64", uri: "data:image/png;base64,***", wantErr: true},
		{name: "bad media type", uri: "data:/;base64,aGVsbG8=", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ct, data, err := decodeDataURI(tc.uri)
			if tc.wantErr {
				assert.ErrorIs(t, err, errMalformedDataURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, ct)
			assert.Equal(t, tc.wantPayload, string(data))
		})
	}
}
