package client

import "errors"

// ErrBaseURL is returned for a missing or malformed server address.
var ErrBaseURL = errors.New("invalid persistence server url")
