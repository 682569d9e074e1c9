package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

// Op names the store operation a write request performs.
type Op string

const (
	OpReplace        Op = "replace"
	OpAppendOrder    Op = "append_order"
	OpRegisterUser   Op = "register_user"
	OpSetUserBlocked Op = "set_user_blocked"
)

// Request is one durable write waiting for a worker. Exactly one of the
// payload fields is meaningful, selected by Op.
type Request struct {
	ID         string
	Collection model.Collection
	Op         Op

	Records any // replace: the full collection slice
	Order   model.Order
	User    model.User
	Block   model.BlockRequest

	EnqueuedAt time.Time
}

// NewReplace builds a whole-collection replace request.
func NewReplace(c model.Collection, records any) Request {
	return newRequest(c, OpReplace, func(r *Request) { r.Records = records })
}

// NewAppendOrder builds an order prepend request.
func NewAppendOrder(o model.Order) Request { //nolint:gocritic // hugeParam: copied into the request
	return newRequest(model.CollectionOrders, OpAppendOrder, func(r *Request) { r.Order = o })
}

// NewRegisterUser builds a user append request.
func NewRegisterUser(u model.User) Request { //nolint:gocritic // hugeParam: copied into the request
	return newRequest(model.CollectionUsers, OpRegisterUser, func(r *Request) { r.User = u })
}

// NewSetUserBlocked builds a block/unblock request.
func NewSetUserBlocked(b model.BlockRequest) Request {
	return newRequest(model.CollectionUsers, OpSetUserBlocked, func(r *Request) { r.Block = b })
}

func newRequest(c model.Collection, op Op, fill func(*Request)) Request {
	r := Request{ID: uuid.NewString(), Collection: c, Op: op, EnqueuedAt: time.Now()}
	fill(&r)
	return r
}
