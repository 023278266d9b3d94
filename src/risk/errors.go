package risk

import "errors"

// ErrConfiguration marks invalid threshold configuration. It is fatal at
// startup and never silently defaulted around.
var ErrConfiguration = errors.New("risk: invalid configuration")

// ErrStateCorruption marks unreadable or malformed persisted state. The
// component that hits it recovers to its most conservative default (PDT
// blocked, breaker halted) and surfaces the error as a warning; it is
// never a silent pass-through.
var ErrStateCorruption = errors.New("risk: persisted state corrupt")
