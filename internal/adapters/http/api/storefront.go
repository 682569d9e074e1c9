package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/internal/state"
)

// Generated article defaults.
const (
	generatedAuthor   = "Gemini Intelligence"
	generatedReadTime = "3 min read"
	generatedImage    = "https://images.unsplash.com/photo-1508098682722-e99c43a406b2?auto=format&fit=crop&w=1200&q=80"
	defaultTopic      = "Football"
	fallbackTitle     = "Elite Performance Update"
	fallbackContent   = "Fresh tactical insights and professional updates just arrived from our AI desk."
)

var generatedTags = []string{"AI-Driven", "Strategic"}

type checkoutRequest struct {
	UserID string           `json:"userId"`
	Items  []model.CartItem `json:"items"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type commentRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type generateRequest struct {
	Category string `json:"category"`
}

// handleSnapshot handles GET /app/{collection}.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCollection, nil)
		return
	}
	records, err := s.storefront.Snapshot(c)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleReplace handles PUT /app/{collection}. The write is accepted once
// memory holds the new records.
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCollection, nil)
		return
	}

	var (
		records any
		err     error
	)
	switch c {
	case model.CollectionNews:
		var news []model.Article
		if err = decode(r, &news); err == nil {
			records = news
		}
	case model.CollectionScores:
		var scores []model.Match
		if err = decode(r, &scores); err == nil {
			records = scores
		}
	case model.CollectionProducts:
		var products []model.Product
		if err = decode(r, &products); err == nil {
			records = products
		}
	default:
		err = fmt.Errorf("%w: %s", state.ErrNotReplaceable, c)
	}
	if err == nil {
		err = s.storefront.Replace(r.Context(), c, records)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, successResponse{Success: true})
}

// handleAppend handles POST /app/{collection}. Only orders accept a single
// record.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	c, ok := collectionParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownCollection, nil)
		return
	}
	if c != model.CollectionOrders {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, fmt.Errorf("%s does not accept single records", c))
		return
	}

	var o model.Order
	if err := decode(r, &o); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.storefront.PlaceOrder(r.Context(), o); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, o)
}

// handleCheckout handles POST /app/checkout.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	o, err := s.storefront.Checkout(r.Context(), req.UserID, req.Items)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, o)
}

// handleLogin handles POST /app/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.storefront.Login(req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleRegister handles POST /app/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.storefront.RegisterUser(r.Context(), req.Username, req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// handleBlock handles POST /app/users/block.
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req model.BlockRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.storefront.SetUserBlocked(r.Context(), req.UserID, req.IsBlocked); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, successResponse{Success: true})
}

// handleComment handles POST /app/news/{id}/comments.
func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.storefront.AddComment(r.Context(), chi.URLParam(r, "id"), req.Username, req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleGenerate handles POST /app/news/generate: it writes an article for
// the requested category and publishes it at the top of the feed.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultTopic
	}

	gen := s.writer.GenerateArticle(r.Context(), category)
	a := model.Article{
		Title:    gen.Title,
		Content:  gen.Content,
		Image:    generatedImage,
		Category: category,
		Author:   generatedAuthor,
		ReadTime: generatedReadTime,
		Tags:     append([]string(nil), generatedTags...),
		Comments: []model.Comment{},
	}
	if strings.TrimSpace(a.Title) == "" {
		a.Title = fallbackTitle
	}
	if strings.TrimSpace(a.Content) == "" {
		a.Content = fallbackContent
	}

	published, err := s.storefront.PublishArticle(r.Context(), a)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, published)
}

// handleSummary handles GET /app/scores/{id}/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scores := s.storefront.Scores()
	idx := slices.IndexFunc(scores, func(m model.Match) bool { return m.ID == id })
	if idx < 0 {
		s.fail(w, r, fmt.Errorf("%w: %q", ErrNoSuchMatch, id))
		return
	}
	m := scores[idx]
	desc := fmt.Sprintf("%s %d - %d %s, %s, minute %d at %s", m.TeamA, m.ScoreA, m.ScoreB, m.TeamB, m.Status, m.Minute(), m.Venue)
	if m.LastEvent != "" {
		desc += ". Last event: " + m.LastEvent
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      m.ID,
		"summary": s.writer.MatchSummary(r.Context(), desc),
	})
}

// handleStatus handles GET /app/status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.storefront.Status())
}
