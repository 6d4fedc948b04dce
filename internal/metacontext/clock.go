package metacontext

import "time"

// clock abstracts "now" so tests can freeze time and assert deterministic
// selections.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
