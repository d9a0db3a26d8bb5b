package frame

import "testing"

func TestCameraMetadataRoundTrip(t *testing.T) {
	t.Parallel()
	m := CameraMetadata{
		Timestamp:  123456789,
		FrameID:    42,
		Width:      640,
		Height:     480,
		SizeBytes:  640 * 480,
		Stride:     640,
		ExposureNs: 8000,
		Gain:       1.5,
		Format:     3,
		Framerate:  30,
	}

	buf := EncodeCameraMetadata(m)
	if len(buf) != CameraMetadataSize {
		t.Fatalf("encoded length = %d, want %d", len(buf), CameraMetadataSize)
	}

	got, err := DecodeCameraMetadata(buf)
	if err != nil {
		t.Fatalf("DecodeCameraMetadata: %v", err)
	}
	if got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestDecodeCameraMetadataRejectsBadMagic(t *testing.T) {
	t.Parallel()
	buf := make([]byte, CameraMetadataSize)
	if _, err := DecodeCameraMetadata(buf); err != ErrBadMagic {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestDecodeCameraMetadataRejectsShortBuffer(t *testing.T) {
	t.Parallel()
	if _, err := DecodeCameraMetadata(make([]byte, 4)); err != ErrShortMetadata {
		t.Errorf("err = %v, want ErrShortMetadata", err)
	}
}

func TestValidateSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		m    CameraMetadata
		want bool
	}{
		{"reasonable", CameraMetadata{Width: 640, Height: 480, SizeBytes: 640 * 480 * 2}, true},
		{"garbage", CameraMetadata{Width: 640, Height: 480, SizeBytes: 640 * 480 * 20}, false},
	}
	for _, tc := range cases {
		if got := ValidateSize(tc.m); got != tc.want {
			t.Errorf("%s: ValidateSize = %v, want %v", tc.name, got, tc.want)
		}
	}
}
