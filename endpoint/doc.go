// Package endpoint resolves the short names callers use to identify a
// publish channel into the filesystem directory that backs it, and reads
// and writes the JSON descriptor (info) that advertises a channel's
// capabilities to clients before they ever attach.
package endpoint
