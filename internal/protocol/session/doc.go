// Package session carries protocol commands over one connection.
//
// A connection is a sequence of tagged frames: an int64 tag followed by one
// serialized command or response. The server opens every connection with a
// HelloResponse on tag 0 and pushes change notifications on NotificationTag.
// Writes go through an Outbox so one goroutine owns the socket's write side.
package session
