package queue

import "time"

func nowUnixSeconds() int64 {
	return time.Now().Unix()
}

// NowMonotonicMS returns the current time as a float64 count of milliseconds,
// finer-grained than a Unix second, suitable as a default order_key source.
func NowMonotonicMS() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
