// Package timezone resolves the zone entries are dated in.
package timezone

import (
	"log"
	"time"
)

// DefaultName is used when no zone is configured.
const DefaultName = "Asia/Kolkata"

// Fallback is used when the zone database is missing from the host.
var Fallback = time.FixedZone("IST", 5*60*60+30*60)

// Load returns the named zone, or Fallback when it cannot be loaded.
func Load(name string) *time.Location {
	if name == "" {
		name = DefaultName
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Timezone %q unavailable, using UTC+05:30: %v", name, err)
		return Fallback
	}
	return loc
}

// Clock returns a now function in loc.
func Clock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}
