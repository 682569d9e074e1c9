package cart

import (
	"fmt"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

var (
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", model.ErrValidation)
	ErrNoUser    = fmt.Errorf("%w: checkout requires a signed-in user", model.ErrValidation)
)
