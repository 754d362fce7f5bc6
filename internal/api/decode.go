package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// collectionEnvelope covers the object shapes the collection endpoints
// return. The first non-nil record list wins.
type collectionEnvelope struct {
	Posts          []model.Record  `json:"posts"`
	ShipmentAds    []model.Record  `json:"shipmentAds"`
	EmptyTruckAds  []model.Record  `json:"emptyTruckAds"`
	Ads            []model.Record  `json:"ads"`
	Data           []model.Record  `json:"data"`
	SuggestedUsers []model.UserRef `json:"suggestedUsers"`
	Suggestions    []model.UserRef `json:"suggestions"`
}

func decodeCollection(body []byte) (model.Collection, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return model.Collection{}, nil
	}

	if body[0] == '[' {
		var recs []model.Record
		if err := json.Unmarshal(body, &recs); err != nil {
			return model.Collection{}, fmt.Errorf("api: decode collection: %w", err)
		}
		return model.Collection{Records: recs}, nil
	}

	var env collectionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.Collection{}, fmt.Errorf("api: decode collection: %w", err)
	}
	c := model.Collection{Suggestions: env.SuggestedUsers}
	if c.Suggestions == nil {
		c.Suggestions = env.Suggestions
	}
	for _, recs := range [][]model.Record{env.Posts, env.ShipmentAds, env.EmptyTruckAds, env.Ads, env.Data} {
		if recs != nil {
			c.Records = recs
			break
		}
	}
	return c, nil
}

// detailKeys are the wrappers a detail body may arrive in.
var detailKeys = []string{"post", "ad", "shipmentAd", "emptyTruckAd", "data"}

func decodeDetail(body []byte) (model.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return model.Record{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.Record{}, fmt.Errorf("api: decode detail: %w", err)
	}

	raw := json.RawMessage(body)
	if _, bare := fields["_id"]; !bare {
		if _, bare = fields["id"]; !bare {
			for _, k := range detailKeys {
				if inner, ok := fields[k]; ok && len(inner) > 0 && inner[0] == '{' {
					raw = inner
					break
				}
			}
		}
	}

	var rec model.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.Record{}, fmt.Errorf("api: decode detail: %w", err)
	}
	return rec, nil
}
