// Package proto defines the ASCII command protocol shared by the relay
// board firmware and host controllers.
package proto

// The protocol is line based: one command per line, terminated by '\n',
// command name and parameters separated by single spaces. Command names
// are case-insensitive. Responses are single lines, either "OK", a bare
// data payload, or "ERROR:<CODE>".
//
// Both ends of the wire must agree on the grammar bit-for-bit. The device
// side uses ParseLine to turn received lines into validated commands; the
// host side builds commands with the typed constructors and encodes them
// with Command.Line, refusing invalid calls before any wire traffic.
//
// Bit ordering: the wire pattern used by STATUS and SET puts relay 8 in
// the leftmost (most significant) position. The persisted storage format
// is the opposite, relay 1 first. ReversePattern converts between the two.
