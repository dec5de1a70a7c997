package common

import "time"

// Now returns the current UTC time truncated to seconds so stored values
// compare the same way on every supported database.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
