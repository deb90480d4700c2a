// Package gpstime converts GPS timestamps to UTC calendar time.
//
// GPS time counts SI seconds since 1980-01-06 00:00:00 UTC and does not
// observe leap seconds, so it runs ahead of UTC by the number of leap
// seconds inserted since the epoch (18 as of 2017-01-01).
package gpstime

import (
	"math"
	"time"
)

// Unix timestamp of the GPS epoch, 1980-01-06 00:00:00 UTC.
const epochUnix = 315964800

// GPS timestamps at which a leap second took effect. UTC lags GPS by the
// number of entries at or before a given GPS time.
var leapEpochs = []int64{
	46828800,   // 1981-07-01
	78364801,   // 1982-07-01
	109900802,  // 1983-07-01
	173059203,  // 1985-07-01
	252028804,  // 1988-01-01
	315187205,  // 1990-01-01
	346723206,  // 1991-01-01
	393984007,  // 1992-07-01
	425520008,  // 1993-07-01
	457056009,  // 1994-07-01
	504489610,  // 1996-01-01
	551750411,  // 1997-07-01
	599184012,  // 1999-01-01
	820108813,  // 2006-01-01
	914803214,  // 2009-01-01
	1025136015, // 2012-07-01
	1119744016, // 2015-07-01
	1167264017, // 2017-01-01
}

// LeapSeconds returns the number of leap seconds in effect at the given
// GPS time.
func LeapSeconds(gps int64) int {
	n := 0
	for _, e := range leapEpochs {
		if gps < e {
			break
		}
		n++
	}
	return n
}

// ToUTC converts integer GPS seconds to UTC calendar time.
func ToUTC(gps int64) time.Time {
	unix := epochUnix + gps - int64(LeapSeconds(gps))
	return time.Unix(unix, 0).UTC()
}

// FormatUTC renders the calendar time of a (possibly fractional) GPS
// timestamp as "2006-01-02 15:04:05 UTC". Fractional seconds are dropped;
// reports keep them in the separate GPS column.
func FormatUTC(gps float64) string {
	return ToUTC(int64(math.Floor(gps))).Format("2006-01-02 15:04:05") + " UTC"
}
