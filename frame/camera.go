package frame

import (
	"encoding/binary"
	"errors"
)

// CameraMetadataSize is the packed, fixed size of a camera metadata
// record: magic, timestamp, frame id, width, height, size_bytes, stride,
// exposure, gain, format, framerate, and reserved padding.
const CameraMetadataSize = 48

// ErrShortMetadata is returned when a buffer is too small to hold a
// metadata record of the expected kind.
var ErrShortMetadata = errors.New("frame: buffer shorter than metadata record")

// ErrBadMagic is returned when a metadata record's magic number does not
// match Magic.
var ErrBadMagic = errors.New("frame: bad magic number")

// CameraMetadata describes one camera frame's image layout. It precedes
// SizeBytes of image data on the wire; stereo streams split that payload
// 50/50 into left then right.
type CameraMetadata struct {
	Timestamp uint64
	FrameID   uint32
	Width     uint32
	Height    uint32
	SizeBytes uint32
	Stride    uint32
	ExposureNs uint32
	Gain      float32
	Format    uint8
	Framerate float32
}

// DecodeCameraMetadata parses a CameraMetadataSize-byte record from buf.
func DecodeCameraMetadata(buf []byte) (CameraMetadata, error) {
	if len(buf) < CameraMetadataSize {
		return CameraMetadata{}, ErrShortMetadata
	}
	if !HasMagic(buf) {
		return CameraMetadata{}, ErrBadMagic
	}
	le := binary.LittleEndian
	return CameraMetadata{
		Timestamp:  le.Uint64(buf[4:12]),
		FrameID:    le.Uint32(buf[12:16]),
		Width:      le.Uint32(buf[16:20]),
		Height:     le.Uint32(buf[20:24]),
		SizeBytes:  le.Uint32(buf[24:28]),
		Stride:     le.Uint32(buf[28:32]),
		ExposureNs: le.Uint32(buf[32:36]),
		Gain:       decodeFloat32(le.Uint32(buf[36:40])),
		Format:     buf[40],
		Framerate:  decodeFloat32(le.Uint32(buf[41:45])),
	}, nil
}

// EncodeCameraMetadata serializes m into a CameraMetadataSize-byte
// record, primarily used by tests and in-process publishers that
// synthesize frames.
func EncodeCameraMetadata(m CameraMetadata) []byte {
	buf := make([]byte, CameraMetadataSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], Magic)
	le.PutUint64(buf[4:12], m.Timestamp)
	le.PutUint32(buf[12:16], m.FrameID)
	le.PutUint32(buf[16:20], m.Width)
	le.PutUint32(buf[20:24], m.Height)
	le.PutUint32(buf[24:28], m.SizeBytes)
	le.PutUint32(buf[28:32], m.Stride)
	le.PutUint32(buf[32:36], m.ExposureNs)
	le.PutUint32(buf[36:40], encodeFloat32(m.Gain))
	buf[40] = m.Format
	le.PutUint32(buf[41:45], encodeFloat32(m.Framerate))
	return buf
}

// ValidateSize guards against a garbage size_bytes field by bounding it
// to a generous multiple of the declared resolution: a well-formed image
// can never need more than 10 bytes per pixel.
func ValidateSize(m CameraMetadata) bool {
	return uint64(m.SizeBytes) <= uint64(m.Width)*uint64(m.Height)*10
}
