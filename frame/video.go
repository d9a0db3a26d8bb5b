package frame

import "fmt"

// Codec identifies the encoded video codec a stream carries, which
// determines how ClassifyFrame inspects a payload.
type Codec uint8

// Supported encoded-video codecs.
const (
	CodecH264 Codec = iota
	CodecH265
)

// Kind classifies an encoded-video payload for fan-out sequencing.
type Kind uint8

const (
	// KindUnknown marks a payload byte that did not match any known
	// frame kind for the codec; the caller should log a warning and not
	// forward it.
	KindUnknown Kind = iota
	// KindHeader marks parameter-set data (SPS/PPS or VPS/SPS/PPS) that
	// must be cached and replayed to late-joining clients.
	KindHeader
	// KindI marks a keyframe: decodable on its own, and the frame after
	// which P-frame delivery may resume for a client.
	KindI
	// KindP marks a delta frame: only deliverable to clients that have
	// already received the most recent I-frame.
	KindP
	// KindB marks a bidirectionally-predicted frame. Classification is
	// currently unsupported upstream; callers should log a warning and
	// treat it like KindUnknown.
	KindB
)

// String names a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindI:
		return "I"
	case KindP:
		return "P"
	case KindB:
		return "B"
	default:
		return "unknown"
	}
}

// ClassifyFrame inspects payload's codec-specific marker byte and
// returns its Kind. payload must be at least 5 bytes (the marker lives
// at offset 4, immediately after a 4-byte prefix whose contents are not
// inspected).
func ClassifyFrame(codec Codec, payload []byte) (Kind, error) {
	if len(payload) < 5 {
		return KindUnknown, fmt.Errorf("frame: payload too short to classify (%d bytes)", len(payload))
	}
	marker := payload[4]

	switch codec {
	case CodecH264:
		switch marker {
		case 0x67:
			return KindHeader, nil
		case 0x65:
			return KindI, nil
		case 0x41:
			return KindP, nil
		default:
			return KindUnknown, fmt.Errorf("frame: unrecognized H264 marker byte 0x%02x", marker)
		}
	case CodecH265:
		switch marker {
		case 0x40:
			return KindHeader, nil
		case 0x26:
			return KindI, nil
		case 0x02:
			return KindP, nil
		default:
			return KindUnknown, fmt.Errorf("frame: unrecognized H265 marker byte 0x%02x", marker)
		}
	default:
		return KindUnknown, fmt.Errorf("frame: unknown codec %d", codec)
	}
}
