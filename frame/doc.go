// Package frame validates and classifies the byte layouts that travel
// over a data FIFO: the magic-number-prefixed raw fixed-size record, the
// metadata-then-payload layout used by camera and point-cloud streams,
// and the encoded-video frame kind (header/I/P) used to gate fan-out of
// H264/H265 streams. It treats every payload as an opaque blob; the wire
// contents of a specific record type (IMU, VIO, tag detection, ...) are
// out of scope, grounded only by the leading magic number and, for
// variable-sized payloads, the metadata fields that describe their
// length.
package frame
