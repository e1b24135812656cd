// Package httpdate parses and formats the HTTP-date grammar (RFC 7231 §7.1.1.1):
// the preferred IMF-fixdate form, plus the two legacy forms a real HTTP/1.0
// deployment still sees on the wire (RFC 850 dates, and asctime's no-zone
// format), with a best-effort decode for every one but a single canonical
// encoding. Grounded on the same approach badu-http's utils_header.go uses
// for ParseTime: try the formats in order and return the first match.
package httpdate

import "time"

// formats lists the layouts tried, in order, by Parse.
var formats = []string{
	time.RFC1123, // Sun, 06 Nov 1994 08:49:37 GMT  (preferred)
	time.RFC850,  // Sunday, 06-Nov-94 08:49:37 GMT  (obsolete)
	time.ANSIC,   // Sun Nov  6 08:49:37 1994        (asctime, no zone)
}

// Parse decodes an HTTP-date header value in any of the three formats
// RFC 7231 requires a recipient to accept. It returns an error if s
// matches none of them.
func Parse(s string) (time.Time, error) {
	var err error
	var t time.Time
	for _, layout := range formats {
		t, err = time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Format renders t in the one canonical form this server ever writes:
// RFC 1123 in GMT, e.g. "Sun, 06 Nov 1994 08:49:37 GMT".
func Format(t time.Time) string {
	return t.UTC().Format(imfFixdate)
}

// imfFixdate is time.RFC1123 with the zone spelled as a literal "GMT";
// time.RFC1123 itself prints "UTC" for a time in the UTC location.
const imfFixdate = "Mon, 02 Jan 2006 15:04:05 GMT"

// Now returns the current time formatted for a Date header. Handlers and
// the engine use this instead of calling time.Now().Format directly so
// the date representation stays in one place.
func Now() string {
	return Format(time.Now())
}
