package gan

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatElapsedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("components are in range and sum to the duration", prop.ForAll(
		func(secs int, millis int) bool {
			d := time.Duration(secs)*time.Second + time.Duration(millis)*time.Millisecond
			var days, hours, mins, s int
			_, err := fmt.Sscanf(FormatElapsed(d), "%dd %dh %dm %ds", &days, &hours, &mins, &s)
			if err != nil {
				return false
			}
			if hours >= 24 || mins >= 60 || s >= 60 {
				return false
			}
			return days*86400+hours*3600+mins*60+s == secs
		},
		gen.IntRange(0, 10000000),
		gen.IntRange(0, 999),
	))

	properties.TestingRun(t)
}
