// Package datastream owns the binary value codec used on every protocol connection.
//
// Ownership boundary:
// - fixed-width integers, bools and enums (little-endian)
// - length-prefixed UTF-16 strings and byte blobs with a null sentinel
// - date/time values with their time representation
// - generic list/set/map container encoding
// - blocking waits for incoming data bounded by a timeout
//
// Writes are buffered until Flush; reads wait on the connection in bounded
// chunks so a large payload from a slow peer is consumed incrementally.
package datastream
