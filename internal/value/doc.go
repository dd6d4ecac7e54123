// Package value defines the record values scenario items carry.
//
// Values form a sealed set: Null, String, Int, Bool, List and Record. There
// is no float type; numbers are int64 so that canonical encoding, hashing and
// ordering are exact.
//
// Canonical encoding follows RFC 8785: object keys sorted by UTF-16 code
// units, strings NFC-normalized, no HTML escaping.
package value
