package extract

import "errors"

var errTrailingData = errors.New("unexpected data after JSON value")
