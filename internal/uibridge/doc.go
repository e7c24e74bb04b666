// Package uibridge connects the editor to a UI host over socket.io.
//
// The bridge is a client: it dials the UI host, listens for one event per
// editor operation and answers each with "<event>:reply" carrying the
// editor's Reply. Dispatch itself does not touch the network, so tests
// drive a Dispatcher directly.
package uibridge
