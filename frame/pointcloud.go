package frame

import (
	"encoding/binary"
	"fmt"
)

// PointFormat identifies a point cloud's per-point wire layout.
type PointFormat uint8

// Supported point cloud formats and their per-point stride in bytes.
const (
	FormatXYZ     PointFormat = 0
	FormatXYZC    PointFormat = 1
	FormatXYZRGB  PointFormat = 2
	FormatXYZCRGB PointFormat = 3
	FormatXY      PointFormat = 4
	FormatXYC     PointFormat = 5
)

var pointStride = map[PointFormat]int{
	FormatXYZ:     12,
	FormatXYZC:    16,
	FormatXYZRGB:  15,
	FormatXYZCRGB: 19,
	FormatXY:      8,
	FormatXYC:     12,
}

// Stride returns the per-point byte width for f, or an error if f is not
// a recognized format.
func Stride(f PointFormat) (int, error) {
	s, ok := pointStride[f]
	if !ok {
		return 0, fmt.Errorf("frame: unknown point cloud format %d", f)
	}
	return s, nil
}

// PointCloudMetadataSize is the packed, fixed size of a point cloud
// metadata record: magic, timestamp, point count, format, a fixed-width
// server name field, and id.
const PointCloudMetadataSize = 53

const pointCloudServerNameLen = 32

// PointCloudMetadata describes one point cloud frame. It precedes
// NPoints * stride-for-Format bytes of point data on the wire.
type PointCloudMetadata struct {
	Timestamp  uint64
	NPoints    uint32
	Format     PointFormat
	ID         uint32
	ServerName string
}

// DecodePointCloudMetadata parses a PointCloudMetadataSize-byte record
// from buf.
func DecodePointCloudMetadata(buf []byte) (PointCloudMetadata, error) {
	if len(buf) < PointCloudMetadataSize {
		return PointCloudMetadata{}, ErrShortMetadata
	}
	if !HasMagic(buf) {
		return PointCloudMetadata{}, ErrBadMagic
	}
	le := binary.LittleEndian
	nameBytes := buf[17 : 17+pointCloudServerNameLen]
	return PointCloudMetadata{
		Timestamp:  le.Uint64(buf[4:12]),
		NPoints:    le.Uint32(buf[12:16]),
		Format:     PointFormat(buf[16]),
		ID:         le.Uint32(buf[49:53]),
		ServerName: cString(nameBytes),
	}, nil
}

// EncodePointCloudMetadata serializes m into a PointCloudMetadataSize-byte
// record.
func EncodePointCloudMetadata(m PointCloudMetadata) []byte {
	buf := make([]byte, PointCloudMetadataSize)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], Magic)
	le.PutUint64(buf[4:12], m.Timestamp)
	le.PutUint32(buf[12:16], m.NPoints)
	buf[16] = byte(m.Format)
	copy(buf[17:17+pointCloudServerNameLen], m.ServerName)
	le.PutUint32(buf[49:53], m.ID)
	return buf
}

// PayloadSize computes the byte length of the point data following m's
// metadata record, or an error if m.Format is unrecognized.
func (m PointCloudMetadata) PayloadSize() (int, error) {
	stride, err := Stride(m.Format)
	if err != nil {
		return 0, err
	}
	return int(m.NPoints) * stride, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
