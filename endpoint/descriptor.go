package endpoint

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fifomesh/mpa/errcode"
)

// DefaultSizeBytes is the per-client FIFO kernel buffer size advertised
// when a server does not override it.
const DefaultSizeBytes = 1 << 20 // 1 MiB

// Descriptor is the mandatory-field view of an endpoint's info document.
// Servers may attach arbitrary additional vendor fields; callers that
// need those should use ReadDocument instead of ReadDescriptor.
type Descriptor struct {
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	Type              string   `json:"type"`
	ServerName        string   `json:"server_name"`
	SizeBytes         int      `json:"size_bytes"`
	ServerPID         int      `json:"server_pid"`
	AvailableCommands []string `json:"available_commands,omitempty"`
}

// WriteDescriptor serializes desc, merged with any vendor fields in
// extra, to dir's info file. extra may be nil.
func WriteDescriptor(dir string, desc Descriptor, extra map[string]any) error {
	doc := map[string]any{
		"name":        desc.Name,
		"location":    desc.Location,
		"type":        desc.Type,
		"server_name": desc.ServerName,
		"size_bytes":  desc.SizeBytes,
		"server_pid":  desc.ServerPID,
	}
	if len(desc.AvailableCommands) > 0 {
		doc["available_commands"] = desc.AvailableCommands
	}
	for k, v := range extra {
		doc[k] = v
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errcode.Wrap(errcode.Other, err)
	}
	if err := os.WriteFile(filepath.Join(dir, InfoFile), data, 0o644); err != nil {
		return errcode.Wrap(errcode.FileIO, err)
	}
	return nil
}

// ReadDescriptor parses dir's info file into the mandatory-field
// Descriptor, returning errcode.InfoNotAvailable if the file is missing
// or malformed.
func ReadDescriptor(dir string) (Descriptor, map[string]any, error) {
	doc, err := ReadDocument(dir)
	if err != nil {
		return Descriptor{}, nil, err
	}

	var desc Descriptor
	raw, err := json.Marshal(doc)
	if err != nil {
		return Descriptor{}, nil, errcode.Wrap(errcode.InfoNotAvailable, err)
	}
	if err := json.Unmarshal(raw, &desc); err != nil {
		return Descriptor{}, nil, errcode.Wrap(errcode.InfoNotAvailable, err)
	}
	return desc, doc, nil
}

// ReadDocument parses dir's info file into an untyped document, for
// callers that need vendor-specific fields the Descriptor struct does
// not model.
func ReadDocument(dir string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, errcode.Wrap(errcode.InfoNotAvailable, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errcode.Wrap(errcode.InfoNotAvailable, err)
	}
	return doc, nil
}
