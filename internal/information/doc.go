// Package information manages the device identification record served
// by the gateway's information API.
//
// The record is a flat set of identification fields (manufacturer,
// model, serial number, SNMP-style sys* fields) keyed by device name.
// SQLite is the source of truth; Redis sits in front as a volatile
// cache-aside layer:
//
//	Get:    cache hit → serve; miss → SQLite, then populate cache (TTL)
//	Update: write SQLite, then invalidate the cache entry
//
// Between an external write and the invalidation there is a small
// window where readers may see the previous value; the TTL bounds how
// long any stale entry can outlive a missed invalidation.
//
// Cache failures degrade to direct SQLite reads and are never surfaced
// to callers. SQLite failures are real errors and always surface,
// distinguishable from ErrNotFound.
//
// Updates accept only field names from a fixed allow-list; the column
// names interpolated into SQL come from that list, never from request
// input, and all values travel as bound parameters.
package information
