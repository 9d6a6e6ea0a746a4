package catalog

import (
	"strconv"
	"strings"
	"time"

	"streaming-db/internal/config"
	apperrors "streaming-db/internal/errors"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

type Subscription string

const (
	SubscriptionFree    Subscription = "free"
	SubscriptionMonthly Subscription = "monthly"
	SubscriptionYearly  Subscription = "yearly"
)

func ParseSubscription(s string) (Subscription, error) {
	switch v := Subscription(s); v {
	case SubscriptionFree, SubscriptionMonthly, SubscriptionYearly:
		return v, nil
	}
	return "", apperrors.BadRequest("invalid subscription %q", s)
}

type Quality string

const (
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
)

func ParseQuality(s string) (Quality, error) {
	switch v := Quality(s); v {
	case Quality480p, Quality720p, Quality1080p:
		return v, nil
	}
	return "", apperrors.BadRequest("invalid quality %q", s)
}

type Device string

const (
	DeviceMobile  Device = "mobile"
	DeviceDesktop Device = "desktop"
)

func ParseDevice(s string) (Device, error) {
	switch v := Device(s); v {
	case DeviceMobile, DeviceDesktop:
		return v, nil
	}
	return "", apperrors.BadRequest("invalid device %q", s)
}

// ParseID parses an externally supplied uid, rid, sid or episode number.
func ParseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, apperrors.BadRequest("%s: not an integer: %q", name, s)
	}
	return id, nil
}

// ParseCount parses a non-negative count such as a LIMIT or a threshold.
func ParseCount(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.BadRequest("%s: not an integer: %q", name, s)
	}
	if n < 0 {
		return 0, apperrors.BadRequest("%s: must not be negative: %d", name, n)
	}
	return n, nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid date %q", s)
	}
	return t, nil
}

// ParseTimestamp accepts a space or a T between date and time.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.Replace(s, "T", " ", 1))
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid timestamp %q", s)
	}
	return t, nil
}

// Window is the inclusive range activeViewer counts sessions in.
type Window struct {
	Mode  config.WindowPolicy
	Start time.Time
	End   time.Time
}

// ParseWindow reads start and end under mode. Date windows take dates only;
// timestamp windows also take bare dates, meaning midnight.
func ParseWindow(mode config.WindowPolicy, start, end string) (Window, error) {
	parse := ParseDate
	if mode == config.WindowTimestamp {
		parse = parseDateOrTimestamp
	}

	w := Window{Mode: mode}
	var err error
	if w.Start, err = parse(start); err != nil {
		return Window{}, err
	}
	if w.End, err = parse(end); err != nil {
		return Window{}, err
	}
	if w.End.Before(w.Start) {
		return Window{}, apperrors.BadRequest("window end %s precedes start %s", end, start)
	}
	return w, nil
}

func parseDateOrTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return ParseTimestamp(s)
}

// bounds formats the window the way the session timestamps are compared.
func (w Window) bounds() (string, string) {
	if w.Mode == config.WindowTimestamp {
		return w.Start.Format(TimestampLayout), w.End.Format(TimestampLayout)
	}
	return w.Start.Format(DateLayout), w.End.Format(DateLayout)
}
