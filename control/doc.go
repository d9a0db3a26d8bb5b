// Package control implements the optional control FIFO: a client-to-server
// command channel layered on the same named-pipe rendezvous pattern as the
// data FIFOs, but with a single shared pipe and no per-client identity.
package control
