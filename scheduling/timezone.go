package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	// embedded zone database; production images carry no zoneinfo
	_ "time/tzdata"

	"go.uber.org/zap"
)

const (
	// DateLayout is the storage format of scheduled dates
	DateLayout = "2006-01-02"
	// TimeLayout is the storage format of scheduled times
	TimeLayout = "15:04:05"
)

// NormalizeTime accepts H:MM, HH:MM or HH:MM:SS and returns HH:MM:SS
func NormalizeTime(t string) (string, error) {
	parts := strings.Split(strings.TrimSpace(t), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("invalid time %q", t)
	}
	limits := []int{23, 59, 59}
	vals := []int{0, 0, 0}
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 || (i > 0 && len(p) != 2) {
			return "", fmt.Errorf("invalid time %q", t)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return "", fmt.Errorf("invalid time %q", t)
		}
		vals[i] = n
	}
	return fmt.Sprintf("%02d:%02d:%02d", vals[0], vals[1], vals[2]), nil
}

// ParseSlot combines a YYYY-MM-DD date and a time into one instant, read in UTC
func ParseSlot(date, clock string) (time.Time, error) {
	norm, err := NormalizeTime(clock)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+norm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return ts, nil
}

// ToUTC converts an attorney-local date and time into UTC components.
// offsetMinutes is minutes east of UTC, so UTC+5:30 is 330.
func ToUTC(date, clock string, offsetMinutes int) (string, string, error) {
	local, err := ParseSlot(date, clock)
	if err != nil {
		return "", "", err
	}
	utc := local.Add(-time.Duration(offsetMinutes) * time.Minute)
	return utc.Format(DateLayout), utc.Format(TimeLayout), nil
}

// FromUTC is the inverse of ToUTC and is used to show a stored slot in attorney-local time
func FromUTC(date, clock string, offsetMinutes int) (string, string, error) {
	utc, err := ParseSlot(date, clock)
	if err != nil {
		return "", "", err
	}
	local := utc.Add(time.Duration(offsetMinutes) * time.Minute)
	return local.Format(DateLayout), local.Format(TimeLayout), nil
}

// stateZones maps US states, by name and postal code, to an IANA zone.
// States spanning two zones use the zone covering most of the population.
var stateZones = map[string]string{
	"alabama": "America/Chicago", "al": "America/Chicago",
	"alaska": "America/Anchorage", "ak": "America/Anchorage",
	"arizona": "America/Phoenix", "az": "America/Phoenix",
	"arkansas": "America/Chicago", "ar": "America/Chicago",
	"california": "America/Los_Angeles", "ca": "America/Los_Angeles",
	"colorado": "America/Denver", "co": "America/Denver",
	"connecticut": "America/New_York", "ct": "America/New_York",
	"delaware": "America/New_York", "de": "America/New_York",
	"district of columbia": "America/New_York", "dc": "America/New_York",
	"florida": "America/New_York", "fl": "America/New_York",
	"georgia": "America/New_York", "ga": "America/New_York",
	"hawaii": "Pacific/Honolulu", "hi": "Pacific/Honolulu",
	"idaho": "America/Boise", "id": "America/Boise",
	"illinois": "America/Chicago", "il": "America/Chicago",
	"indiana": "America/Indiana/Indianapolis", "in": "America/Indiana/Indianapolis",
	"iowa": "America/Chicago", "ia": "America/Chicago",
	"kansas": "America/Chicago", "ks": "America/Chicago",
	"kentucky": "America/New_York", "ky": "America/New_York",
	"louisiana": "America/Chicago", "la": "America/Chicago",
	"maine": "America/New_York", "me": "America/New_York",
	"maryland": "America/New_York", "md": "America/New_York",
	"massachusetts": "America/New_York", "ma": "America/New_York",
	"michigan": "America/Detroit", "mi": "America/Detroit",
	"minnesota": "America/Chicago", "mn": "America/Chicago",
	"mississippi": "America/Chicago", "ms": "America/Chicago",
	"missouri": "America/Chicago", "mo": "America/Chicago",
	"montana": "America/Denver", "mt": "America/Denver",
	"nebraska": "America/Chicago", "ne": "America/Chicago",
	"nevada": "America/Los_Angeles", "nv": "America/Los_Angeles",
	"new hampshire": "America/New_York", "nh": "America/New_York",
	"new jersey": "America/New_York", "nj": "America/New_York",
	"new mexico": "America/Denver", "nm": "America/Denver",
	"new york": "America/New_York", "ny": "America/New_York",
	"north carolina": "America/New_York", "nc": "America/New_York",
	"north dakota": "America/Chicago", "nd": "America/Chicago",
	"ohio": "America/New_York", "oh": "America/New_York",
	"oklahoma": "America/Chicago", "ok": "America/Chicago",
	"oregon": "America/Los_Angeles", "or": "America/Los_Angeles",
	"pennsylvania": "America/New_York", "pa": "America/New_York",
	"rhode island": "America/New_York", "ri": "America/New_York",
	"south carolina": "America/New_York", "sc": "America/New_York",
	"south dakota": "America/Chicago", "sd": "America/Chicago",
	"tennessee": "America/Chicago", "tn": "America/Chicago",
	"texas": "America/Chicago", "tx": "America/Chicago",
	"utah": "America/Denver", "ut": "America/Denver",
	"vermont": "America/New_York", "vt": "America/New_York",
	"virginia": "America/New_York", "va": "America/New_York",
	"washington": "America/Los_Angeles", "wa": "America/Los_Angeles",
	"west virginia": "America/New_York", "wv": "America/New_York",
	"wisconsin": "America/Chicago", "wi": "America/Chicago",
	"wyoming": "America/Denver", "wy": "America/Denver",
	"puerto rico": "America/Puerto_Rico", "pr": "America/Puerto_Rico",
}

// ZoneForState returns the IANA location for a US state name or postal code.
// The bool is false when the state is unknown; the location is then UTC.
func ZoneForState(state string) (*time.Location, bool) {
	name, ok := stateZones[strings.ToLower(strings.TrimSpace(state))]
	if !ok {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// ResolveLocation picks the zone for a case: an explicit IANA name wins over the state table
func ResolveLocation(tzName, state string) *time.Location {
	if tzName != "" {
		loc, err := time.LoadLocation(tzName)
		if err == nil {
			return loc
		}
		zap.S().Warnw("unknown time zone on case, falling back to state", "timeZone", tzName, "state", state)
	}
	loc, ok := ZoneForState(state)
	if !ok {
		zap.S().Warnw("no time zone known for state, using UTC", "state", state)
	}
	return loc
}

// LocalDayPassed reports whether the trial's calendar day in loc is strictly before today in loc.
// date and clock are the stored UTC slot.
func LocalDayPassed(date, clock string, loc *time.Location, now time.Time) bool {
	slot, err := ParseSlot(date, clock)
	if err != nil {
		return false
	}
	sy, sm, sd := slot.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	trialDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return trialDay.Before(today)
}
