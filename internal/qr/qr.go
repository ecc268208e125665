// Package qr encodes lookup payloads into PNG QR codes for employee
// badges and printed route sheets.
package qr

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// EncodePNG marshals the payload to JSON and renders it as a QR PNG
func EncodePNG(payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, pngSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}

// DecodePayload parses a scanned QR payload back into dst
func DecodePayload(raw string, dst interface{}) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode qr payload: %w", err)
	}
	return nil
}
