// Package protocol owns the command/response catalogue and its wire encoding.
//
// Ownership boundary:
// - the Type numbering shared by commands and responses (ResponseBit)
// - one payload struct per command and response variant
// - the factory building empty variants from a type code
// - Serialize/Deserialize of single commands through datastream
//
// Framing with a correlation tag lives in protocol/session.
package protocol
