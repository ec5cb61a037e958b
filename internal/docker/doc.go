// Package docker talks to a container engine over its HTTP API.
//
// Every request follows the same path: the Transport copies the response
// body into a decoder from the stream package, which forwards the bytes to
// the caller's sink, and once the transfer is complete a per-operation
// classifier turns the status code and decoder state into a result or an
// *Error. The Client type is the main entry point; Container and Network are
// handles returned by the create calls.
package docker
