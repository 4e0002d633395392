package matrix

import "errors"

// ErrSingular reports a zero pivot, an empty row or a non-finite solution.
var ErrSingular = errors.New("matrix: singular system")
