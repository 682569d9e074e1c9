package state

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Showrav193/Sportsworld/internal/adapters/mq/queue"
	"github.com/Showrav193/Sportsworld/internal/domain/cart"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

// DemoPassword is accepted for every existing account. The storefront carries
// no credential store.
const DemoPassword = "password"

// lockReady takes the write lock and fails when the snapshots are not loaded.
func (s *Synchronizer) lockReady() error {
	s.mu.Lock()
	if s.phase != PhaseReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	return nil
}

// commit finishes a locked mutation: it counts the pending write, releases the
// lock and queues the request.
func (s *Synchronizer) commit(ctx context.Context, kind string, size int, r queue.Request) { //nolint:gocritic // hugeParam
	s.pending[r.Collection]++
	s.mu.Unlock()

	metrics.RecordOptimisticUpdate(r.Collection.String(), kind)
	metrics.UpdateSnapshotSize(r.Collection.String(), size)
	s.dispatch(ctx, r)
}

func (s *Synchronizer) reject(c model.Collection, err error) error {
	s.mu.Unlock()
	metrics.RecordValidationRejection(c.String())
	return err
}

// PlaceOrder prepends o to the orders snapshot and queues a durable append.
func (s *Synchronizer) PlaceOrder(ctx context.Context, o model.Order) error { //nolint:gocritic // hugeParam
	if err := s.lockReady(); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return s.reject(model.CollectionOrders, err)
	}
	o = o.Clone()
	s.orders = append([]model.Order{o}, s.orders...)
	s.commit(ctx, "append", len(s.orders), queue.NewAppendOrder(o))
	return nil
}

// Checkout prices items against the current catalog and places the resulting
// order for userID. Every line needs a positive quantity no larger than the
// product's stock.
func (s *Synchronizer) Checkout(ctx context.Context, userID string, items []model.CartItem) (model.Order, error) {
	for _, it := range items {
		if it.Quantity < 1 {
			metrics.RecordValidationRejection(model.CollectionOrders.String())
			return model.Order{}, fmt.Errorf("%w: product %q needs a positive quantity", model.ErrValidation, it.ID)
		}
	}
	if err := s.lockReady(); err != nil {
		return model.Order{}, err
	}

	idx := slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == userID })
	if idx < 0 {
		return model.Order{}, s.reject(model.CollectionOrders, cart.ErrNoUser)
	}
	if s.users[idx].IsBlocked {
		s.mu.Unlock()
		return model.Order{}, ErrBlocked
	}

	lines := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		pi := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == it.ID })
		if pi < 0 {
			return model.Order{}, s.reject(model.CollectionOrders, fmt.Errorf("%w: unknown product %q", model.ErrValidation, it.ID))
		}
		p := s.products[pi]
		if it.Quantity > p.Stock {
			return model.Order{}, s.reject(model.CollectionOrders, fmt.Errorf("%w: only %d of %q in stock", model.ErrValidation, p.Stock, p.ID))
		}
		lines = append(lines, model.CartItem{Product: p, Quantity: it.Quantity})
	}
	o, err := cart.FromItems(lines).Checkout(userID, s.now())
	if err != nil {
		return model.Order{}, s.reject(model.CollectionOrders, err)
	}

	s.orders = append([]model.Order{o}, s.orders...)
	s.commit(ctx, "append", len(s.orders), queue.NewAppendOrder(o))
	return o.Clone(), nil
}

// RegisterUser creates a regular account. Emails are unique, compared
// case-insensitively.
func (s *Synchronizer) RegisterUser(ctx context.Context, username, email string) (model.User, error) {
	if err := s.lockReady(); err != nil {
		return model.User{}, err
	}

	email = strings.TrimSpace(email)
	if slices.ContainsFunc(s.users, func(u model.User) bool { return strings.EqualFold(u.Email, email) }) {
		return model.User{}, s.reject(model.CollectionUsers, ErrUserExists)
	}
	u := model.User{
		ID:        uuid.NewString(),
		Username:  strings.TrimSpace(username),
		Email:     email,
		Role:      model.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return model.User{}, s.reject(model.CollectionUsers, err)
	}

	s.users = append(slices.Clone(s.users), u)
	s.commit(ctx, "register", len(s.users), queue.NewRegisterUser(u))
	return u, nil
}

// SetUserBlocked toggles the blocked flag of a user.
func (s *Synchronizer) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	if err := s.lockReady(); err != nil {
		return err
	}

	idx := slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == userID })
	if idx < 0 {
		return s.reject(model.CollectionUsers, fmt.Errorf("%w: user %q not found", model.ErrValidation, userID))
	}
	users := slices.Clone(s.users)
	users[idx].IsBlocked = blocked
	s.users = users
	s.commit(ctx, "block", len(users), queue.NewSetUserBlocked(model.BlockRequest{UserID: userID, IsBlocked: blocked}))
	return nil
}

// Login checks credentials against the users snapshot.
func (s *Synchronizer) Login(email, password string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady {
		return model.User{}, ErrNotReady
	}

	idx := slices.IndexFunc(s.users, func(u model.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
	if idx < 0 || password != DemoPassword {
		return model.User{}, ErrInvalidCredentials
	}
	if s.users[idx].IsBlocked {
		return model.User{}, ErrBlocked
	}
	return s.users[idx], nil
}

// AddComment prepends a comment to an article and queues a news replace.
func (s *Synchronizer) AddComment(ctx context.Context, articleID, username, text string) (model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.TrimSpace(username) == "" {
		return model.Comment{}, fmt.Errorf("%w: a comment needs a user and some text", model.ErrValidation)
	}
	if err := s.lockReady(); err != nil {
		return model.Comment{}, err
	}

	idx := slices.IndexFunc(s.news, func(a model.Article) bool { return a.ID == articleID })
	if idx < 0 {
		return model.Comment{}, s.reject(model.CollectionNews, ErrArticleNotFound)
	}
	cm := model.Comment{ID: uuid.NewString(), Username: username, Text: text, Date: s.now().UTC()}

	news := slices.Clone(s.news)
	news[idx].Comments = append([]model.Comment{cm}, news[idx].Comments...)
	s.news = news
	s.commit(ctx, "comment", len(news), queue.NewReplace(model.CollectionNews, news))
	return cm, nil
}

// PublishArticle prepends a new article and queues a news replace. An empty id
// is assigned.
func (s *Synchronizer) PublishArticle(ctx context.Context, a model.Article) (model.Article, error) { //nolint:gocritic // hugeParam
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Date.IsZero() {
		a.Date = s.now().UTC()
	}
	a = a.Clone()
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Comments == nil {
		a.Comments = []model.Comment{}
	}
	if err := s.lockReady(); err != nil {
		return model.Article{}, err
	}
	if err := a.Validate(); err != nil {
		return model.Article{}, s.reject(model.CollectionNews, err)
	}
	if slices.ContainsFunc(s.news, func(n model.Article) bool { return n.ID == a.ID }) {
		return model.Article{}, s.reject(model.CollectionNews, fmt.Errorf("%w: duplicate id %q", model.ErrValidation, a.ID))
	}

	news := append([]model.Article{a}, s.news...)
	s.news = news
	s.commit(ctx, "publish", len(news), queue.NewReplace(model.CollectionNews, news))
	return a.Clone(), nil
}
