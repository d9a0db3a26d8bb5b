// Package fifoio provides the low-level named-pipe plumbing shared by the
// server and client engines: creating FIFO nodes, opening them
// non-blocking with the retries POSIX FIFO semantics require, sizing
// their kernel buffers, and a cancellable reader used in place of
// signal-driven interruption of blocking reads.
package fifoio
