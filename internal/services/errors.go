package services

import "errors"

// ErrRecommendationUnavailable is the only failure callers of the
// recommendation path see. Everything softer (cache misses, malformed
// events, items gone from the catalog) is absorbed internally.
var ErrRecommendationUnavailable = errors.New("recommendation source unavailable")
