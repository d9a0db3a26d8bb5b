package errcode

import (
	"errors"
	"testing"
)

func TestCodeString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want string
	}{
		{ServerNotAvailable, "server not available"},
		{Timeout, "timed out"},
		{Code(-999), "unknown error code -999"},
	}
	for _, tc := range cases {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("Code(%d).String() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	err := Wrap(FileIO, errors.New("disk full"))
	if !errors.Is(err, New(FileIO, "")) {
		t.Error("expected errors.Is to match on Code")
	}
	if errors.Is(err, New(Timeout, "")) {
		t.Error("expected errors.Is to not match a different Code")
	}
	if err.Error() != "file I/O error: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
}
