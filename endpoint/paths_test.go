package endpoint

import (
	"strings"
	"testing"
)

func TestExpandBareName(t *testing.T) {
	t.Parallel()
	got, err := Expand(DefaultBase, "imu0")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "/run/mpa/imu0/" {
		t.Errorf("Expand(bare) = %q", got)
	}
}

func TestExpandBareNameWithTrailingSlash(t *testing.T) {
	t.Parallel()
	got, err := Expand(DefaultBase, "imu0/")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "/run/mpa/imu0/" {
		t.Errorf("Expand(bare+slash) = %q", got)
	}
}

func TestExpandAbsolutePath(t *testing.T) {
	t.Parallel()
	got, err := Expand(DefaultBase, "/tmp/custom/imu0")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "/tmp/custom/imu0/" {
		t.Errorf("Expand(abs) = %q", got)
	}
}

func TestExpandRejectsOverlongPath(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", MaxDirLen)
	_, err := Expand(DefaultBase, long)
	if err == nil {
		t.Fatal("expected an error for an overlong name")
	}
}

func TestExpandRejectsEmptyName(t *testing.T) {
	t.Parallel()
	if _, err := Expand(DefaultBase, ""); err == nil {
		t.Fatal("expected an error for an empty name")
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		rejectUnknown bool
		wantErr       bool
	}{
		{"imu0", false, false},
		{"", false, true},
		{"a/b", false, true},
		{"unknown", true, true},
		{"unknown", false, false},
	}
	for _, tc := range cases {
		err := ValidateName(tc.name, tc.rejectUnknown)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateName(%q, %v) error = %v, wantErr %v", tc.name, tc.rejectUnknown, err, tc.wantErr)
		}
	}
}

func TestCreateDirsThenExists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/sub/endpoint/"

	if err := CreateDirs(dir); err != nil {
		t.Fatalf("CreateDirs: %v", err)
	}
	// Idempotent.
	if err := CreateDirs(dir); err != nil {
		t.Fatalf("CreateDirs (again): %v", err)
	}

	if Exists(dir) {
		t.Error("Exists should be false before the request FIFO is created")
	}
}

func TestCreateDirsRejectsPathWithoutTrailingSlash(t *testing.T) {
	t.Parallel()
	if err := CreateDirs(t.TempDir()); err == nil {
		t.Fatal("expected an error for a path without a trailing slash")
	}
}

func TestRemoveAllIsBestEffort(t *testing.T) {
	t.Parallel()
	if err := RemoveAll(t.TempDir() + "/does/not/exist/"); err != nil {
		t.Errorf("RemoveAll on a missing tree returned %v, want nil", err)
	}
}
