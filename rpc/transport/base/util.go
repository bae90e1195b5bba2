package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// headerSize is the size of a frame header: 8 bytes requestID + 4 bytes length
const headerSize = 12

// writeFrame writes a frame to the connection with the format:
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(conn net.Conn, requestID uint64, data []byte) error {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint64(header[:8], requestID)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from r. The payload is read into buf if it is large
// enough, otherwise a new slice is allocated. Frames with a payload larger than
// maxLen (if > 0) are rejected without reading the payload.
func readFrame(r io.Reader, buf []byte, maxLen uint32) (uint64, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	requestID := binary.BigEndian.Uint64(header[:8])
	contentLength := binary.BigEndian.Uint32(header[8:12])

	if maxLen > 0 && contentLength > maxLen {
		return requestID, nil, fmt.Errorf("%w: %d > %d bytes", errFrameTooLarge, contentLength, maxLen)
	}
	if contentLength == 0 {
		return requestID, []byte{}, nil
	}

	if cap(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}
	data := buf[:contentLength]
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, err
	}
	return requestID, data, nil
}
