package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

//go:embed seed.json
var demoCatalog []byte

// AdminEmail is the account present in every freshly initialized store.
const AdminEmail = "admin@worldsporta.com"

// seedDocument builds the initial payload of every collection.
func seedDocument(demo bool, now time.Time) (map[model.Collection]json.RawMessage, error) {
	doc := make(map[model.Collection]json.RawMessage, len(model.Collections()))
	for _, c := range model.Collections() {
		doc[c] = json.RawMessage("[]")
	}

	admin := []model.User{{
		ID:        "1",
		Username:  "admin",
		Email:     AdminEmail,
		Role:      model.RoleAdmin,
		CreatedAt: now.UTC(),
	}}
	users, err := json.Marshal(admin)
	if err != nil {
		return nil, fmt.Errorf("encode admin seed: %w", err)
	}
	doc[model.CollectionUsers] = users

	if !demo {
		return doc, nil
	}
	var catalog map[model.Collection]json.RawMessage
	if err := json.Unmarshal(demoCatalog, &catalog); err != nil {
		return nil, fmt.Errorf("decode demo catalog: %w", err)
	}
	for c, raw := range catalog {
		if _, ok := doc[c]; ok {
			doc[c] = raw
		}
	}
	return doc, nil
}
