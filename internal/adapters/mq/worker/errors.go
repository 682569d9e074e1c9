package worker

import "errors"

// ErrUnknownOp is reported for a request whose Op no worker understands.
var ErrUnknownOp = errors.New("unknown write op")
