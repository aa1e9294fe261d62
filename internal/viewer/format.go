package viewer

import (
	"fmt"
	"strings"
)

// UnknownParty is shown for a missing phone number.
const UnknownParty = "Unknown"

// FormatPhoneNumber renders NANP numbers: 10 digits as (AAA) BBB-CCCC and 11 digits
// with a leading 1 as +1 (AAA) BBB-CCCC. Any other digit count returns raw unchanged.
func FormatPhoneNumber(raw string) string {
	if raw == "" {
		return UnknownParty
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()

	switch {
	case len(d) == 10:
		return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	case len(d) == 11 && d[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", d[1:4], d[4:7], d[7:])
	default:
		return raw
	}
}

// FormatDuration renders seconds as m:ss, or N/A when absent.
func FormatDuration(seconds *int) string {
	if seconds == nil || *seconds < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d:%02d", *seconds/60, *seconds%60)
}

// FormatTotalDuration renders a talk-time total as "Hh Mm Ss".
func FormatTotalDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, seconds%3600/60, seconds%60)
}
