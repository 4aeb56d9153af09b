// Package normalizer turns a raw model reply into the action list the
// frontend executes. It is stateless: every call works only on its Input and
// the injected catalog.
package normalizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/graph/parsers"
	"github.com/shoppingmate-ai/server/internal/agent/model"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// Input is one model reply plus the request it answers.
type Input struct {
	Raw string
	// Query is the user's message. Search actions without their own query
	// text fall back to it.
	Query           string
	RoomDescription string
	UserContext     map[string]any
	// AllowPlainText wraps a non-JSON reply in a single response action
	// instead of apologising.
	AllowPlainText bool
}

type Normalizer struct {
	catalog catalog.Catalog
}

func New(c catalog.Catalog) *Normalizer {
	return &Normalizer{catalog: c}
}

// Normalize parses in.Raw and completes every action. Malformed replies
// become a single apology action and are not an error. A catalog failure
// stops processing: the actions normalised so far are returned together
// with the error, and the failing action is dropped.
func (n *Normalizer) Normalize(ctx context.Context, in Input) ([]model.Action, error) {
	start := time.Now()

	res, err := parsers.ParseActions(in.Raw, parsers.Options{AllowPlainText: in.AllowPlainText})
	if err != nil {
		logx.Error().Str("component", "normalizer").Err(err).Msg("action parser failed")
		return []model.Action{model.NewResponse(MsgRephrase)}, nil
	}
	switch res.Failure {
	case parsers.FailureNotJSON:
		logx.Warn().Str("component", "normalizer").Str("raw", parsers.Snippet(in.Raw)).Msg("model reply is not JSON")
		return []model.Action{model.NewResponse(MsgRephrase)}, nil
	case parsers.FailureNotArray:
		logx.Warn().Str("component", "normalizer").Str("raw", parsers.Snippet(in.Raw)).Msg("model reply is not a JSON array")
		return []model.Action{model.NewResponse(MsgUnexpectedFormat)}, nil
	}

	out := make([]model.Action, 0, len(res.Actions))
	for _, a := range res.Actions {
		na, err := n.normalizeAction(ctx, a.Clone(), in)
		if err != nil {
			logx.Error().
				Str("component", "normalizer").
				Str("task", string(a.Task)).
				Int("completed", len(out)).
				Err(err).
				Msg("catalog lookup failed; aborting remaining actions")
			return out, fmt.Errorf("normalize %s action: %w", a.Task, err)
		}
		out = append(out, na)
	}

	logx.Debug().
		Str("component", "normalizer").
		Int("actions", len(out)).
		Bool("room_description", in.RoomDescription != "").
		Int("context_keys", len(in.UserContext)).
		Dur("latency", time.Since(start)).
		Msg("actions normalized")
	return out, nil
}

func (n *Normalizer) normalizeAction(ctx context.Context, a model.Action, in Input) (model.Action, error) {
	switch a.Task {
	case model.TaskSearch:
		return n.search(ctx, a, in)
	case model.TaskGiftRecommendation:
		return n.gift(ctx, a)
	case model.TaskRecommend:
		a.ProductIDs = []string{}
		if a.Message == "" {
			a.Message = msgRecommend
		}
	case model.TaskCompare:
		if a.Message == "" {
			a.Message = compareMessage(a.ProductIDs)
		}
	case model.TaskEmptyCart:
		a.ProductIDs = []string{}
		if a.Message == "" {
			a.Message = msgEmptyCart
		}
	default:
		if !a.Task.Known() {
			logx.Warn().Str("component", "normalizer").Str("task", string(a.Task)).Msg("passing through unknown task")
		}
	}
	return a, nil
}

// search replaces whatever ids the model proposed with the catalog result.
func (n *Normalizer) search(ctx context.Context, a model.Action, in Input) (model.Action, error) {
	query := a.Query
	if query == "" {
		query = in.Query
	}
	pf := ExtractPriceFilter(query)

	ids, err := n.catalog.Search(ctx, catalog.SearchParams{
		Query:    pf.Remainder,
		Text:     strings.TrimSpace(query),
		PriceMin: pf.Min,
		PriceMax: pf.Max,
		Currency: pf.Currency,
	})
	if err != nil {
		return a, err
	}

	logx.Debug().
		Str("component", "normalizer").
		Str("query", query).
		Bool("price_filter", pf.Matched).
		Str("currency", pf.Currency).
		Int("count", len(ids)).
		Msg("search resolved")

	a.ProductIDs = ids
	if a.Message == "" {
		a.Message = searchMessage(query, ids)
	}
	return a, nil
}

// gift resolves recommendations once gender, age and preferences are all
// known; otherwise it asks for the first missing one.
func (n *Normalizer) gift(ctx context.Context, a model.Action) (model.Action, error) {
	pd := a.PersonDetails
	if pd == nil {
		pd = &model.PersonDetails{}
	}

	var ask string
	switch {
	case pd.Gender == "":
		ask = msgAskGender
	case !pd.HasAge():
		ask = msgAskAge
	case pd.Preferences == "":
		ask = msgAskPreferences
	}
	if ask != "" {
		a.Task = model.TaskResponse
		a.ProductIDs = []string{}
		a.Message = ask
		return a, nil
	}

	ids, err := n.catalog.Search(ctx, catalog.SearchParams{
		Gender:      pd.Gender,
		Age:         pd.Age,
		Preferences: pd.Preferences,
	})
	if err != nil {
		return a, err
	}
	a.ProductIDs = ids
	if a.Message == "" {
		a.Message = giftMessage(*pd.Age, pd.Gender, pd.Preferences, ids)
	}
	return a, nil
}
