package pattern

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser normalizes weekday names to their canonical Title-case form
// ("sunday" -> "Sunday") regardless of how the pattern text spelled them.
var titleCaser = cases.Title(language.English)

var weekdayName = map[time.Weekday]string{}

func init() {
	for name, wd := range weekdayByName {
		weekdayName[wd] = titleCaser.String(name)
	}
}

// weekdaySegmentValue renders the WW segment of a weekday pattern's
// canonical Value, preserving the order weekday names were given
// in at parse time and normalizing only their case.
func weekdaySegmentValue(isAny bool, weekdays []time.Weekday) string {
	if isAny {
		return "**"
	}
	names := make([]string, len(weekdays))
	for i, wd := range weekdays {
		names[i] = weekdayName[wd]
	}
	return strings.Join(names, "|")
}
