package server

// Option configures a Channel at creation time.
type Option func(*options)

type options struct {
	controlPipe       bool
	legacyInfoFIFO    bool
	debugPrints       bool
	capacity          int
	availableCommands []string
	onConnect         func(handle string)
	onDisconnect      func(handle string)
}

func defaultOptions() options {
	return options{}
}

// WithControlPipe enables the channel's control FIFO, letting attached
// clients send commands back to the publisher out of band from the
// data path.
func WithControlPipe() Option {
	return func(o *options) { o.controlPipe = true }
}

// WithLegacyInfoFIFO additionally creates an empty FIFO node named
// info_fifo in the endpoint directory, for clients written against the
// rendezvous-by-FIFO-read convention that predates the plain info file.
// Nothing is written to that node; the descriptor itself is only in the
// plain info file.
func WithLegacyInfoFIFO() Option {
	return func(o *options) { o.legacyInfoFIFO = true }
}

// WithDebugPrints enables verbose per-record logging, intended for
// interactive debugging rather than production use.
func WithDebugPrints() Option {
	return func(o *options) { o.debugPrints = true }
}

// WithPipeCapacity overrides the per-client kernel pipe buffer size
// requested for every client FIFO the channel allocates. Values below
// fifoio.MinPipeCapacity (including zero and negative values) fall back
// to fifoio.DefaultPipeCapacity; values above fifoio.MaxPipeCapacity are
// clamped to it.
func WithPipeCapacity(bytes int) Option {
	return func(o *options) { o.capacity = bytes }
}

// WithAvailableCommands advertises the control commands this channel
// understands in its descriptor's available_commands list, letting a
// client discover what it can send over the control FIFO without a
// side channel.
func WithAvailableCommands(commands ...string) Option {
	return func(o *options) { o.availableCommands = append([]string(nil), commands...) }
}

// WithConnectCallback registers a hook invoked, outside any internal
// lock, whenever a client finishes attaching.
func WithConnectCallback(f func(handle string)) Option {
	return func(o *options) { o.onConnect = f }
}

// WithDisconnectCallback registers a hook invoked whenever a client is
// dropped. It runs outside the client's own I/O lock; when the drop
// happens during a publish call, the channel's client-table read lock is
// still held while it runs.
func WithDisconnectCallback(f func(handle string)) Option {
	return func(o *options) { o.onDisconnect = f }
}
