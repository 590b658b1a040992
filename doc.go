// Package fronius queries the local Solar API v1 of Fronius inverters,
// smart meters and battery storage units and reshapes the vendor JSON
// into normalized, unit-annotated readings.
//
// The API is plain unauthenticated JSON over HTTP. Every call performs
// one blocking GET and returns a fresh result; the package keeps no
// state between calls and performs no retries or caching.
package fronius
