package endpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fifomesh/mpa/errcode"
)

// DefaultBase is the default parent directory for endpoints when a bare
// name (no leading slash) is given to Expand.
const DefaultBase = "/run/mpa/"

// MaxDirLen bounds the length of an expanded endpoint directory path, to
// match the fixed-size path buffers the directory layout implies.
const MaxDirLen = 64

// RequestFile, ControlFile, and InfoFile are the well-known file names
// inside every endpoint directory.
const (
	RequestFile = "request"
	ControlFile = "control"
	InfoFile    = "info"
)

// Expand resolves name to a canonical endpoint directory path ending in
// "/". name may be a bare token ("imu0"), a bare token with a trailing
// slash, or an absolute path. Bare names are prefixed with base (use
// DefaultBase when the caller has not overridden it). The result is
// bounded to MaxDirLen bytes.
func Expand(base, name string) (string, error) {
	if name == "" {
		return "", errcode.New(errcode.InvalidArg, "empty endpoint name")
	}

	var dir string
	if filepath.IsAbs(name) {
		dir = name
	} else {
		dir = filepath.Join(base, name)
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	if len(dir) > MaxDirLen {
		return "", errcode.New(errcode.InvalidArg,
			fmt.Sprintf("expanded path %q exceeds max length %d", dir, MaxDirLen))
	}
	return dir, nil
}

// ValidateName rejects names that cannot be used as an endpoint or client
// handle: empty, containing a path separator, or (for endpoints) the
// reserved literal "unknown".
func ValidateName(name string, rejectUnknown bool) error {
	if name == "" {
		return errcode.New(errcode.InvalidArg, "empty name")
	}
	if strings.ContainsRune(name, '/') {
		return errcode.New(errcode.InvalidArg, fmt.Sprintf("name %q must not contain '/'", name))
	}
	if rejectUnknown && name == "unknown" {
		return errcode.New(errcode.InvalidArg, `name must not be the literal "unknown"`)
	}
	return nil
}

// CreateDirs creates dir and all missing ancestors with 0666-compatible
// permissions (0777 reduced by umask, matching mkdir -p semantics for a
// world-writable memory-backed tree). dir must end in "/"; every
// component up to that final slash is created as a directory, and
// nothing is ever created as a file. An already-existing directory is
// success.
func CreateDirs(dir string) error {
	if !strings.HasSuffix(dir, "/") {
		return errcode.New(errcode.InvalidArg, fmt.Sprintf("path %q must end in '/'", dir))
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return errcode.Wrap(errcode.FileIO, err)
	}
	return nil
}

// RemoveAll best-effort removes dir and everything under it.
func RemoveAll(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errcode.Wrap(errcode.FileIO, err)
	}
	return nil
}

// Exists reports whether dir looks like a live endpoint, i.e. whether its
// rendezvous FIFO is present.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, RequestFile))
	return err == nil
}

// IsType reports whether dir is a live endpoint whose info descriptor's
// "type" field equals typ.
func IsType(dir, typ string) bool {
	if !Exists(dir) {
		return false
	}
	desc, _, err := ReadDescriptor(dir)
	if err != nil {
		return false
	}
	return desc.Type == typ
}
