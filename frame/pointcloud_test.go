package frame

import "testing"

func TestPointCloudMetadataRoundTrip(t *testing.T) {
	t.Parallel()
	m := PointCloudMetadata{
		Timestamp:  999,
		NPoints:    1000,
		Format:     FormatXYZRGB,
		ID:         7,
		ServerName: "tof0",
	}

	buf := EncodePointCloudMetadata(m)
	got, err := DecodePointCloudMetadata(buf)
	if err != nil {
		t.Fatalf("DecodePointCloudMetadata: %v", err)
	}
	if got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestStride(t *testing.T) {
	t.Parallel()
	cases := []struct {
		format PointFormat
		want   int
	}{
		{FormatXYZ, 12},
		{FormatXYZC, 16},
		{FormatXYZRGB, 15},
		{FormatXYZCRGB, 19},
		{FormatXY, 8},
		{FormatXYC, 12},
	}
	for _, tc := range cases {
		got, err := Stride(tc.format)
		if err != nil {
			t.Fatalf("Stride(%d): %v", tc.format, err)
		}
		if got != tc.want {
			t.Errorf("Stride(%d) = %d, want %d", tc.format, got, tc.want)
		}
	}
}

func TestStrideUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := Stride(PointFormat(99)); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestPayloadSize(t *testing.T) {
	t.Parallel()
	m := PointCloudMetadata{NPoints: 100, Format: FormatXYZ}
	size, err := m.PayloadSize()
	if err != nil {
		t.Fatalf("PayloadSize: %v", err)
	}
	if size != 1200 {
		t.Errorf("PayloadSize = %d, want 1200", size)
	}
}

func TestPayloadSizeUnknownFormat(t *testing.T) {
	t.Parallel()
	m := PointCloudMetadata{NPoints: 100, Format: PointFormat(99)}
	if _, err := m.PayloadSize(); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
