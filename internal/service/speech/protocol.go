package speech

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// Volcengine speech services speak a framed binary protocol over WebSocket:
// a 4-byte header, an optional sequence number or event block, a payload
// size, and the payload itself.

const protocolVersion = 0b0001

type messageType uint8

const (
	fullClientRequest       messageType = 0b0001
	audioOnlyRequest        messageType = 0b0010
	fullServerResponse      messageType = 0b1001
	audioOnlyServerResponse messageType = 0b1011
	errorResponse           messageType = 0b1111
)

type messageFlags uint8

const (
	flagNoSequence       messageFlags = 0b0000
	flagPositiveSequence messageFlags = 0b0001
	flagLastNoSequence   messageFlags = 0b0010
	flagNegativeSequence messageFlags = 0b0011
	flagWithEvent        messageFlags = 0b0100
)

type serializationMethod uint8

const (
	rawSerialization  serializationMethod = 0b0000
	jsonSerialization serializationMethod = 0b0001
)

type compressionMethod uint8

const (
	noCompression   compressionMethod = 0b0000
	gzipCompression compressionMethod = 0b0001
)

type frameHeader struct {
	version       uint8
	headerSize    uint8
	msgType       messageType
	flags         messageFlags
	serialization serializationMethod
	compression   compressionMethod
}

type frame struct {
	header    frameHeader
	sequence  int32
	eventType int32
	sessionID string
	errorCode uint32
	payload   []byte
}

func (f *frame) isLast() bool {
	switch f.header.flags & 0b0011 {
	case flagLastNoSequence, flagNegativeSequence:
		return true
	}
	return false
}

func newFrameHeader(t messageType, flags messageFlags, ser serializationMethod, comp compressionMethod) frameHeader {
	return frameHeader{
		version:       protocolVersion,
		headerSize:    0b0001, // 4-byte header
		msgType:       t,
		flags:         flags,
		serialization: ser,
		compression:   comp,
	}
}

func encodeFrame(f *frame) []byte {
	buf := bytes.NewBuffer(nil)

	buf.WriteByte(f.header.version<<4 | f.header.headerSize)
	buf.WriteByte(uint8(f.header.msgType)<<4 | uint8(f.header.flags))
	buf.WriteByte(uint8(f.header.serialization)<<4 | uint8(f.header.compression))
	buf.WriteByte(0x00)

	switch f.header.flags & 0b0011 {
	case flagPositiveSequence, flagNegativeSequence:
		var seq [4]byte
		binary.BigEndian.PutUint32(seq[:], uint32(f.sequence))
		buf.Write(seq[:])
	}

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(f.payload)))
	buf.Write(size[:])
	buf.Write(f.payload)

	return buf.Bytes()
}

func decodeFrame(r io.Reader) (*frame, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	f := &frame{header: frameHeader{
		version:       head[0] >> 4,
		headerSize:    head[0] & 0x0F,
		msgType:       messageType(head[1] >> 4),
		flags:         messageFlags(head[1] & 0x0F),
		serialization: serializationMethod(head[2] >> 4),
		compression:   compressionMethod(head[2] & 0x0F),
	}}
	if f.header.version != protocolVersion {
		return nil, fmt.Errorf("unsupported protocol version %d", f.header.version)
	}

	// Skip extended header bytes, if any.
	if extra := int(f.header.headerSize)*4 - 4; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return nil, fmt.Errorf("read extended header: %w", err)
		}
	}

	switch f.header.flags & 0b0011 {
	case flagPositiveSequence, flagNegativeSequence:
		var seq uint32
		if err := binary.Read(r, binary.BigEndian, &seq); err != nil {
			return nil, fmt.Errorf("read sequence: %w", err)
		}
		f.sequence = int32(seq)
	}

	if f.header.flags&flagWithEvent != 0 {
		if err := binary.Read(r, binary.BigEndian, &f.eventType); err != nil {
			return nil, fmt.Errorf("read event type: %w", err)
		}
		var idSize uint32
		if err := binary.Read(r, binary.BigEndian, &idSize); err != nil {
			return nil, fmt.Errorf("read session id size: %w", err)
		}
		if idSize > 0 {
			id := make([]byte, idSize)
			if _, err := io.ReadFull(r, id); err != nil {
				return nil, fmt.Errorf("read session id: %w", err)
			}
			f.sessionID = string(id)
		}
	}

	if f.header.msgType == errorResponse {
		if err := binary.Read(r, binary.BigEndian, &f.errorCode); err != nil {
			return nil, fmt.Errorf("read error code: %w", err)
		}
	}

	var payloadSize uint32
	if err := binary.Read(r, binary.BigEndian, &payloadSize); err != nil {
		return nil, fmt.Errorf("read payload size: %w", err)
	}
	if payloadSize > 0 {
		f.payload = make([]byte, payloadSize)
		if _, err := io.ReadFull(r, f.payload); err != nil {
			return nil, fmt.Errorf("read payload of %d bytes: %w", payloadSize, err)
		}
	}

	return f, nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressPayload(payload []byte, method compressionMethod) ([]byte, error) {
	if method != gzipCompression || len(payload) == 0 {
		return payload, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
