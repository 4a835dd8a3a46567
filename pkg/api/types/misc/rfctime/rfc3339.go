// Package rfctime carries timestamps over the wire as RFC3339 strings.
package rfctime

import (
	"bytes"
	"encoding/json"
	"time"
)

// RFC3339DateTimeFormat renders a time with an explicit numeric
// offset. Stringifying never writes "Z".
const RFC3339DateTimeFormat string = "2006-01-02T15:04:05.999-07:00"

// RFC3339DateTimeFormatZ accepts "Z" as the offset. Parsing goes
// through this one.
const RFC3339DateTimeFormatZ string = time.RFC3339Nano

// RFC3339 is a time.Time which marshals itself as an RFC3339 date-time
// string ( https://www.ietf.org/rfc/rfc3339.txt ). Platform timestamps
// arrive in this shape.
type RFC3339 time.Time

// New wraps a time.Time as RFC3339.
func New(t time.Time) RFC3339 {
	return RFC3339(t)
}

func (rfctime RFC3339) Time() time.Time {
	return time.Time(rfctime)
}

// Equal reports whether both point at the same instant. Two nils are
// equal, a nil and a non-nil never are.
func (rfctime *RFC3339) Equal(other *RFC3339) bool {
	if (rfctime == nil) != (other == nil) {
		return false
	}
	return rfctime == nil || rfctime.Time().Equal(other.Time())
}

// String renders the time by RFC3339DateTimeFormat.
func (t RFC3339) String() string {
	return time.Time(t).Format(RFC3339DateTimeFormat)
}

// ParseRFC3339DateTime reads an RFC3339 date-time string, with or
// without "Z".
func ParseRFC3339DateTime(s string) (RFC3339, error) {
	t, err := time.Parse(RFC3339DateTimeFormatZ, s)
	if err != nil {
		return *new(RFC3339), err
	}
	return RFC3339(t), nil
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *RFC3339) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRFC3339DateTime(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
