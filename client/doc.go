// Package client implements the attach side of the fabric: it performs
// the rendezvous handshake with a published endpoint, opens the data
// FIFO the server allocates in response, and optionally runs a
// background helper loop that decodes records and hands them to a
// caller-supplied callback.
package client
