package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

const (
	searchK = 10
	giftK   = 5
)

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenAIEmbedder embeds text with a Gemini embedding model.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(client *genai.Client, model string) *GenAIEmbedder {
	return &GenAIEmbedder{client: client, model: model}
}

func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, errx.WrapModel(fmt.Errorf("embed content: %w", err))
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errx.WrapModel(errx.ErrEmptyModelResponse)
	}
	return resp.Embeddings[0].Values, nil
}

// Vector ranks products by cosine distance between the query embedding and
// the product_embedding column of a pgvector table.
type Vector struct {
	db       *pgxpool.Pool
	embedder Embedder
	table    string
}

// NewVector binds a pool to a product table; table may be schema-qualified.
func NewVector(db *pgxpool.Pool, embedder Embedder, table string) *Vector {
	return &Vector{
		db:       db,
		embedder: embedder,
		table:    pgx.Identifier(strings.Split(table, ".")).Sanitize(),
	}
}

func (v *Vector) Name() string { return "vector" }
func (v *Vector) Ready() bool  { return true }

type vectorHit struct {
	ID    string
	Price model.Money
}

// Search embeds the user's query text (or the gift query built from person
// details) and post-filters the nearest neighbours by price. Gift searches
// take the top five without a price filter; text searches take the top ten.
func (v *Vector) Search(ctx context.Context, params SearchParams) ([]string, error) {
	text, k, filter := params.SemanticText(), searchK, true
	if params.IsGift() && text == "" {
		age := 0
		if params.Age != nil {
			age = *params.Age
		}
		text, k, filter = GiftQuery(params.Gender, age, params.Preferences), giftK, false
	}

	hits, err := v.nearest(ctx, text, k)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if filter && !params.PriceMatches(h.Price) {
			continue
		}
		ids = append(ids, h.ID)
	}
	logx.Debug().
		Str("component", "catalog").
		Str("backend", v.Name()).
		Int("k", k).
		Int("hits", len(hits)).
		Int("kept", len(ids)).
		Msg("vector search")
	return ids, nil
}

func (v *Vector) nearest(ctx context.Context, text string, k int) ([]vectorHit, error) {
	emb, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id,
       COALESCE(price_usd_units, 0),
       COALESCE(price_usd_nanos, 0),
       COALESCE(price_usd_currency_code, 'USD')
FROM %s
ORDER BY product_embedding <=> $1::vector
LIMIT $2`, v.table)

	rows, err := v.db.Query(ctx, query, vectorLiteral(emb), k)
	if err != nil {
		return nil, errx.WrapCatalog(fmt.Errorf("similarity query: %w", err))
	}
	defer rows.Close()

	var hits []vectorHit
	for rows.Next() {
		var h vectorHit
		if err := rows.Scan(&h.ID, &h.Price.Units, &h.Price.Nanos, &h.Price.CurrencyCode); err != nil {
			return nil, errx.WrapCatalog(fmt.Errorf("scan similarity row: %w", err))
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapCatalog(fmt.Errorf("similarity rows: %w", err))
	}
	return hits, nil
}

func (v *Vector) Lookup(ctx context.Context, id string) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT id, name, COALESCE(description, ''), COALESCE(categories::text, ''),
       COALESCE(price_usd_units, 0), COALESCE(price_usd_nanos, 0), COALESCE(price_usd_currency_code, 'USD')
FROM %s WHERE id = $1`, v.table)

	var (
		p          model.Product
		categories string
	)
	err := v.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &categories,
		&p.Price.Units, &p.Price.Nanos, &p.Price.CurrencyCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, errx.WrapCatalog(fmt.Errorf("lookup %s: %w", id, err))
	}
	p.Categories = splitCategories(categories)
	return &p, nil
}

// vectorLiteral formats an embedding in pgvector's text form, e.g. [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
