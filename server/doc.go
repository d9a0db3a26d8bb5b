// Package server implements the publish side of the fabric: it
// advertises an endpoint, accepts client rendezvous requests, allocates
// a data FIFO per attached client, and fans records out to every
// attached client without letting a slow or dead client block its
// siblings or the publisher.
package server
