// Package dispatch issues resolved requests concurrently.
//
// Every descriptor gets its own goroutine. A response outside the accepted
// status range (200-399) or a transport failure fails the whole dispatch
// with the first error observed; partial results are discarded.
package dispatch
