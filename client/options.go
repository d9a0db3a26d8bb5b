package client

import "github.com/fifomesh/mpa/frame"

// HelperMode selects which record shape the background helper loop
// decodes, if any. At most one helper mode may be enabled for a Client.
type HelperMode int

const (
	// HelperNone leaves record delivery entirely to the caller's own
	// Read calls; no background loop runs.
	HelperNone HelperMode = iota
	// HelperSimple delivers raw, unframed byte slices.
	HelperSimple
	// HelperCamera decodes fixed camera metadata records followed by
	// their pixel payload.
	HelperCamera
	// HelperPointCloud decodes fixed point-cloud metadata records
	// followed by their point payload.
	HelperPointCloud
)

// SimpleCallback receives one raw record per invocation.
type SimpleCallback func(data []byte)

// CameraCallback receives one decoded camera frame per invocation.
type CameraCallback func(meta frame.CameraMetadata, pixels []byte)

// PointCloudCallback receives one decoded point cloud frame per
// invocation.
type PointCloudCallback func(meta frame.PointCloudMetadata, points []byte)

// Option configures a Client at construction time.
type Option func(*options)

type options struct {
	base                 string
	mode                 HelperMode
	simpleCB             SimpleCallback
	cameraCB             CameraCallback
	pointCloudCB         PointCloudCallback
	disableAutoReconnect bool
	startPaused          bool
	debugPrints          bool
	readBufSize          int
	maxNameAttempts      int
}

func defaultOptions() options {
	return options{
		readBufSize:     64 * 1024,
		maxNameAttempts: MaxNameAttempts,
	}
}

// WithBase overrides the default base directory bare endpoint names
// resolve under.
func WithBase(base string) Option {
	return func(o *options) { o.base = base }
}

// WithSimpleHelper starts a background loop that delivers every record
// read off the data FIFO to cb unmodified.
func WithSimpleHelper(cb SimpleCallback) Option {
	return func(o *options) {
		o.mode = HelperSimple
		o.simpleCB = cb
	}
}

// WithCameraHelper starts a background loop that decodes fixed camera
// metadata records and hands each one, with its trailing pixel payload,
// to cb.
func WithCameraHelper(cb CameraCallback) Option {
	return func(o *options) {
		o.mode = HelperCamera
		o.cameraCB = cb
	}
}

// WithPointCloudHelper starts a background loop that decodes fixed
// point-cloud metadata records and hands each one, with its trailing
// point payload, to cb.
func WithPointCloudHelper(cb PointCloudCallback) Option {
	return func(o *options) {
		o.mode = HelperPointCloud
		o.pointCloudCB = cb
	}
}

// WithDisableAutoReconnect stops the helper loop from attempting to
// reattach after a read failure; it simply exits instead.
func WithDisableAutoReconnect() Option {
	return func(o *options) { o.disableAutoReconnect = true }
}

// WithStartPaused creates the Client already paused: the rendezvous
// handshake and data FIFO are not opened until the first Resume.
func WithStartPaused() Option {
	return func(o *options) { o.startPaused = true }
}

// WithDebugPrints enables verbose per-record logging.
func WithDebugPrints() Option {
	return func(o *options) { o.debugPrints = true }
}

// WithReadBufSize overrides the simple helper's per-read buffer size.
// The camera and point cloud helpers size their reads from the
// metadata record's declared payload length instead, so this has no
// effect on them.
func WithReadBufSize(n int) Option {
	return func(o *options) { o.readBufSize = n }
}
