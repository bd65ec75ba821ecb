package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs. Pattern: travelly:{module}:{operation}:{params}.
// The seat ledger itself is never cached: every reservation decision re-reads
// ledger rows inside its transaction.

const (
	CACHE_PREFIX = "travelly"
)

// Flight catalog cache keys
const (
	CACHE_KEY_FLIGHTS_LIST  = CACHE_PREFIX + ":flights:list"        // + :public|admin:page:X:limit:Y:hash
	CACHE_KEY_FLIGHT_DETAIL = CACHE_PREFIX + ":flights:detail:ref:" // + flight ref
	CACHE_KEY_FLIGHT_PUBLIC = CACHE_PREFIX + ":flights:public:ref:" // + flight ref
)

// Flight catalog cache TTLs
const (
	TTL_FLIGHT_LIST   = 15 * time.Minute
	TTL_FLIGHT_DETAIL = 1 * time.Hour
)

// Invalidation patterns (used with Redis KEYS on write paths)
const (
	PATTERN_INVALIDATE_FLIGHTS_ALL = CACHE_PREFIX + ":flights:*"
)

func BuildFlightListKey(scope string, page, limit int, filterHash string) string {
	return fmt.Sprintf("%s:%s:page:%d:limit:%d:f:%s", CACHE_KEY_FLIGHTS_LIST, scope, page, limit, filterHash)
}

func BuildFlightDetailKey(ref string) string {
	return CACHE_KEY_FLIGHT_DETAIL + ref
}

func BuildFlightPublicKey(ref string) string {
	return CACHE_KEY_FLIGHT_PUBLIC + ref
}
