package endpoint

import "time"

// RefreshPolicy names a bundle of cache-timing parameters applied uniformly
// to a class of endpoints.
type RefreshPolicy string

const (
	// PolicyRealtime suits data that changes second to second, such as
	// vessel positions.
	PolicyRealtime RefreshPolicy = "realtime"
	// PolicyFrequent suits data that changes within minutes, such as
	// terminal wait times.
	PolicyFrequent RefreshPolicy = "frequent"
	// PolicyModerate suits data that changes within hours.
	PolicyModerate RefreshPolicy = "moderate"
	// PolicyStatic suits data that only changes when the upstream flush
	// date moves; freshness is driven by invalidation, not polling.
	PolicyStatic RefreshPolicy = "static"
)

// Profile is the concrete timing tuple a RefreshPolicy maps to.
type Profile struct {
	StaleFor      time.Duration
	RetainFor     time.Duration
	RefetchEvery  time.Duration
	RetryCount    int
	RetryDelay    time.Duration
	RefetchOnWake bool
}

// Profile resolves the policy to its timing tuple. Unknown policies resolve
// to the moderate profile.
func (p RefreshPolicy) Profile() Profile {
	switch p {
	case PolicyRealtime:
		return Profile{
			StaleFor:      5 * time.Second,
			RetainFor:     time.Minute,
			RefetchEvery:  5 * time.Second,
			RetryCount:    1,
			RetryDelay:    time.Second,
			RefetchOnWake: true,
		}
	case PolicyFrequent:
		return Profile{
			StaleFor:      time.Minute,
			RetainFor:     10 * time.Minute,
			RefetchEvery:  time.Minute,
			RetryCount:    2,
			RetryDelay:    2 * time.Second,
			RefetchOnWake: true,
		}
	case PolicyStatic:
		return Profile{
			StaleFor:      7 * 24 * time.Hour,
			RetainFor:     7 * 24 * time.Hour,
			RefetchEvery:  0,
			RetryCount:    3,
			RetryDelay:    5 * time.Second,
			RefetchOnWake: false,
		}
	default:
		return Profile{
			StaleFor:      5 * time.Minute,
			RetainFor:     time.Hour,
			RefetchEvery:  0,
			RetryCount:    3,
			RetryDelay:    5 * time.Second,
			RefetchOnWake: false,
		}
	}
}
