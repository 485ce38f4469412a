package models

import (
	"encoding/json"
	"time"
)

// FlexTime is a timestamp normalized to epoch milliseconds. Upstream feeds
// deliver timestamps in three shapes: a structured server timestamp
// ({seconds, nanoseconds}), an epoch-seconds object, or a raw numeric
// client timestamp. All comparisons (sorting, timeout checks, "time ago"
// display) go through this one type.
type FlexTime int64

// millisEpochFloor: numeric values at or above this are already epoch
// millis; below it they are epoch seconds. 1e12 ms is 2001-09-09, well
// before any data this system stores.
const millisEpochFloor = int64(1e12)

type structuredTimestamp struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds *int64 `json:"nanoseconds"`
	// underscore-prefixed variants appear in serialized server timestamps
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds *int64 `json:"_nanoseconds"`
}

// UnmarshalJSON accepts any of the three wire shapes
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err == nil {
		f, err := raw.Float64()
		if err != nil {
			return err
		}
		*t = normalizeNumeric(int64(f))
		return nil
	}

	var st structuredTimestamp
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	var secs, nanos int64
	if st.Seconds != nil {
		secs = *st.Seconds
	} else if st.USeconds != nil {
		secs = *st.USeconds
	}
	if st.Nanoseconds != nil {
		nanos = *st.Nanoseconds
	} else if st.UNanoseconds != nil {
		nanos = *st.UNanoseconds
	}
	*t = FlexTime(secs*1000 + nanos/1e6)
	return nil
}

// MarshalJSON always emits epoch millis
func (t FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

func normalizeNumeric(v int64) FlexTime {
	if v != 0 && v < millisEpochFloor {
		return FlexTime(v * 1000)
	}
	return FlexTime(v)
}

// NormalizeTimestamp converts a decoded timestamp of any supported shape to
// epoch millis. Maps cover documents decoded into interface{} trees.
func NormalizeTimestamp(v interface{}) int64 {
	switch ts := v.(type) {
	case FlexTime:
		return int64(ts)
	case time.Time:
		return ts.UnixMilli()
	case int64:
		return int64(normalizeNumeric(ts))
	case int:
		return int64(normalizeNumeric(int64(ts)))
	case float64:
		return int64(normalizeNumeric(int64(ts)))
	case map[string]interface{}:
		secs := numField(ts, "seconds", "_seconds")
		nanos := numField(ts, "nanoseconds", "_nanoseconds")
		return secs*1000 + nanos/1e6
	default:
		return 0
	}
}

func numField(m map[string]interface{}, keys ...string) int64 {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return int64(n)
		case int64:
			return n
		case int:
			return int64(n)
		case int32:
			return int64(n)
		}
	}
	return 0
}

// Time converts to a stdlib time.Time
func (t FlexTime) Time() time.Time {
	return time.UnixMilli(int64(t))
}

// FlexTimeNow returns the current wall clock as a FlexTime
func FlexTimeNow() FlexTime {
	return FlexTime(time.Now().UnixMilli())
}
