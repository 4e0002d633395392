package boundary

import "errors"

// ErrStateMismatch reports a state record written for a different boundary.
var ErrStateMismatch = errors.New("boundary: state does not match")
