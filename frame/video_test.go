package frame

import "testing"

func TestClassifyFrameH264(t *testing.T) {
	t.Parallel()
	cases := []struct {
		marker byte
		want   Kind
	}{
		{0x67, KindHeader},
		{0x65, KindI},
		{0x41, KindP},
	}
	for _, tc := range cases {
		payload := []byte{0, 0, 0, 0, tc.marker}
		got, err := ClassifyFrame(CodecH264, payload)
		if err != nil {
			t.Fatalf("marker 0x%02x: %v", tc.marker, err)
		}
		if got != tc.want {
			t.Errorf("marker 0x%02x: got %v, want %v", tc.marker, got, tc.want)
		}
	}
}

func TestClassifyFrameH265(t *testing.T) {
	t.Parallel()
	cases := []struct {
		marker byte
		want   Kind
	}{
		{0x40, KindHeader},
		{0x26, KindI},
		{0x02, KindP},
	}
	for _, tc := range cases {
		payload := []byte{0, 0, 0, 0, tc.marker}
		got, err := ClassifyFrame(CodecH265, payload)
		if err != nil {
			t.Fatalf("marker 0x%02x: %v", tc.marker, err)
		}
		if got != tc.want {
			t.Errorf("marker 0x%02x: got %v, want %v", tc.marker, got, tc.want)
		}
	}
}

func TestClassifyFrameRejectsUnknownMarker(t *testing.T) {
	t.Parallel()
	_, err := ClassifyFrame(CodecH264, []byte{0, 0, 0, 0, 0xFF})
	if err == nil {
		t.Fatal("expected an error for an unrecognized marker byte")
	}
}

func TestClassifyFrameRejectsShortPayload(t *testing.T) {
	t.Parallel()
	_, err := ClassifyFrame(CodecH264, []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected an error for a too-short payload")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	if KindI.String() != "I" {
		t.Errorf("KindI.String() = %q", KindI.String())
	}
	if KindUnknown.String() != "unknown" {
		t.Errorf("KindUnknown.String() = %q", KindUnknown.String())
	}
}
