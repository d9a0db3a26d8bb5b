package endpoint

import (
	"os"
	"reflect"
	"testing"
)

func TestWriteReadDescriptorRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/"

	desc := Descriptor{
		Name:       "imu0",
		Location:   dir,
		Type:       "imu_data_t",
		ServerName: "imu-server",
		SizeBytes:  DefaultSizeBytes,
		ServerPID:  os.Getpid(),
	}
	if err := WriteDescriptor(dir, desc, map[string]any{"hw_id": "bmi088"}); err != nil {
		t.Fatalf("WriteDescriptor: %v", err)
	}

	got, doc, err := ReadDescriptor(dir)
	if err != nil {
		t.Fatalf("ReadDescriptor: %v", err)
	}
	if !reflect.DeepEqual(got, desc) {
		t.Errorf("ReadDescriptor = %+v, want %+v", got, desc)
	}
	if doc["hw_id"] != "bmi088" {
		t.Errorf("vendor field hw_id missing from document: %+v", doc)
	}
}

func TestReadDescriptorMissingFile(t *testing.T) {
	t.Parallel()
	if _, _, err := ReadDescriptor(t.TempDir() + "/"); err == nil {
		t.Fatal("expected an error for a missing info file")
	}
}

func TestIsType(t *testing.T) {
	t.Parallel()
	dir := t.TempDir() + "/"
	if err := os.WriteFile(dir+RequestFile, nil, 0o666); err != nil {
		t.Fatalf("seed request file: %v", err)
	}
	desc := Descriptor{Name: "cam0", Location: dir, Type: "camera", SizeBytes: DefaultSizeBytes}
	if err := WriteDescriptor(dir, desc, nil); err != nil {
		t.Fatalf("WriteDescriptor: %v", err)
	}

	if !IsType(dir, "camera") {
		t.Error("IsType(camera) = false, want true")
	}
	if IsType(dir, "imu_data_t") {
		t.Error("IsType(imu_data_t) = true, want false")
	}
}
