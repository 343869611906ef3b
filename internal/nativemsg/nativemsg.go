// Package nativemsg implements the Chrome native messaging wire format: each
// message is a 4-byte length prefix in host byte order followed by that many
// bytes of JSON.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// maxOutbound is Chrome's limit on messages sent to the browser.
	maxOutbound = 1024 * 1024
	// maxInbound guards against corrupt length prefixes.
	maxInbound = 64 * 1024 * 1024
)

// byteOrder matches what Chrome uses on every supported platform.
var byteOrder = binary.LittleEndian

// ReadMessage reads one framed message from r and unmarshals it into v.
// io.EOF is returned unchanged when the peer closed the channel cleanly.
func ReadMessage(r io.Reader, v any) error {
	var length uint32
	if err := binary.Read(r, byteOrder, &length); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("nativemsg: read length: %w", err)
	}
	if length == 0 {
		return fmt.Errorf("nativemsg: zero-length message")
	}
	if length > maxInbound {
		return fmt.Errorf("nativemsg: message length %d exceeds limit", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("nativemsg: read body: %w", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("nativemsg: unmarshal: %w", err)
	}
	return nil
}

// WriteMessage frames v as JSON and writes it to w.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("nativemsg: marshal: %w", err)
	}
	if len(data) > maxOutbound {
		return fmt.Errorf("nativemsg: message of %d bytes exceeds browser limit", len(data))
	}

	if err := binary.Write(w, byteOrder, uint32(len(data))); err != nil {
		return fmt.Errorf("nativemsg: write length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("nativemsg: write body: %w", err)
	}
	return nil
}
