package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shoppingmate-ai/server/internal/agent/catalog"
	"github.com/shoppingmate-ai/server/internal/agent/graph/tools"
	"github.com/shoppingmate-ai/server/internal/agent/llm"
	"github.com/shoppingmate-ai/server/internal/agent/model"
	"github.com/shoppingmate-ai/server/internal/agent/normalizer"
)

type fakeGenerator struct {
	reply   string
	err     error
	mode    string
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Mode() string {
	if f.mode == "" {
		return llm.ModeDirect
	}
	return f.mode
}

func (f *fakeGenerator) ToolCount() int {
	if f.mode == llm.ModeAgent {
		return 2
	}
	return 0
}

type fakeCaptioner struct {
	caption string
	err     error
}

func (f *fakeCaptioner) Caption(ctx context.Context, image string) (string, error) {
	return f.caption, f.err
}

func newService(t *testing.T, cfg Config) *Service {
	t.Helper()
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.NewMemory(nil)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func messages(actions []model.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Message
	}
	return out
}

func TestProcessQuerySearch(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"task":"search","query":"watch under 200"},{"task":"view-cart"}]`}
	s := newService(t, Config{Generator: gen})

	resp := s.ProcessQuery(context.Background(), model.QueryRequest{
		Message:     "show me watches under 200",
		UserContext: map[string]any{"latest_selected_product_ids": []any{"OLJCESPC7Z"}},
	})
	if len(resp.Actions) != 2 {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
	search := resp.Actions[0]
	if search.Task != model.TaskSearch || len(search.ProductIDs) != 1 || search.ProductIDs[0] != "1YMWWN1N4O" {
		t.Fatalf("unexpected search action %+v", search)
	}
	if resp.Actions[1].Task != model.TaskViewCart {
		t.Fatalf("unexpected second action %+v", resp.Actions[1])
	}

	prompt := gen.prompts[0]
	if !strings.Contains(prompt, `User Message: "show me watches under 200"`) ||
		!strings.Contains(prompt, "latest_selected_product_ids") {
		t.Fatalf("prompt missing request fields:\n%s", prompt)
	}
	if strings.Contains(prompt, tools.ToolSearchProduct) {
		t.Fatal("direct prompt should not mention tools")
	}
}

func TestProcessQueryImage(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"task":"response","message":"Try a linen sofa."}]`}
	s := newService(t, Config{Generator: gen, Captioner: &fakeCaptioner{caption: "Scandinavian"}})

	resp := s.ProcessQuery(context.Background(), model.QueryRequest{Message: "what fits here?", Image: "data:image/png;base64,AAAA"})
	got := messages(resp.Actions)
	if len(got) != 2 || got[0] != "I see a room with a Scandinavian style." || got[1] != "Try a linen sofa." {
		t.Fatalf("unexpected actions %v", got)
	}
	if !strings.Contains(gen.prompts[0], "Room Description (if applicable): Scandinavian") {
		t.Fatalf("room description missing from prompt")
	}
}

func TestProcessQueryImageFailureContinues(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"task":"checkout"}]`}
	s := newService(t, Config{Generator: gen, Captioner: &fakeCaptioner{err: errors.New("vision down")}})

	resp := s.ProcessQuery(context.Background(), model.QueryRequest{Message: "checkout", Image: "abc"})
	if len(resp.Actions) != 2 || resp.Actions[0].Message != MsgImageFailed || resp.Actions[1].Task != model.TaskCheckout {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
	if !strings.Contains(gen.prompts[0], "Room Description (if applicable): \n") {
		t.Fatalf("room description should be empty after a vision failure")
	}

	// no captioner configured behaves the same way
	s = newService(t, Config{Generator: &fakeGenerator{reply: `[]`}})
	resp = s.ProcessQuery(context.Background(), model.QueryRequest{Image: "abc"})
	if len(resp.Actions) != 1 || resp.Actions[0].Message != MsgImageFailed {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
}

func TestProcessQueryFailures(t *testing.T) {
	tests := []struct {
		name    string
		catalog catalog.Catalog
		gen     *fakeGenerator
		want    []string
	}{
		{
			name: "model error",
			gen:  &fakeGenerator{err: errors.New("quota exceeded")},
			want: []string{MsgInternalError},
		},
		{
			name: "not json",
			gen:  &fakeGenerator{reply: "sure, here you go"},
			want: []string{normalizer.MsgRephrase},
		},
		{
			name: "blank reply",
			gen:  &fakeGenerator{reply: ""},
			want: []string{normalizer.MsgRephrase},
		},
		{
			name: "not an array",
			gen:  &fakeGenerator{reply: `{"task":"checkout"}`},
			want: []string{normalizer.MsgUnexpectedFormat},
		},
		{
			name: "null reply",
			gen:  &fakeGenerator{reply: "null"},
			want: []string{normalizer.MsgUnexpectedFormat},
		},
		{
			name:    "catalog unavailable",
			catalog: catalog.NewUnavailable("vector", errors.New("secret denied")),
			gen:     &fakeGenerator{reply: `[{"task":"response","message":"Looking."},{"task":"search","query":"mug"}]`},
			want:    []string{"Looking.", MsgCatalogUnavailable},
		},
		{
			name:    "catalog error",
			catalog: failingCatalog{},
			gen:     &fakeGenerator{reply: `[{"task":"search","query":"mug"}]`},
			want:    []string{MsgInternalError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, Config{Catalog: tt.catalog, Generator: tt.gen})
			got := messages(s.ProcessQuery(context.Background(), model.QueryRequest{Message: "mug"}).Actions)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

type failingCatalog struct{}

func (failingCatalog) Search(context.Context, catalog.SearchParams) ([]string, error) {
	return nil, errors.New("connection reset")
}
func (failingCatalog) Lookup(context.Context, string) (*model.Product, error) {
	return nil, errors.New("connection reset")
}
func (failingCatalog) Name() string { return "failing" }
func (failingCatalog) Ready() bool  { return true }

func TestProcessQueryAgentMode(t *testing.T) {
	gen := &fakeGenerator{mode: llm.ModeAgent, reply: "We have a great mug for you."}
	s := newService(t, Config{Generator: gen})

	resp := s.ProcessQuery(context.Background(), model.QueryRequest{Message: "mug"})
	if len(resp.Actions) != 1 || resp.Actions[0].Task != model.TaskResponse || resp.Actions[0].Message != "We have a great mug for you." {
		t.Fatalf("plain text not wrapped: %+v", resp.Actions)
	}
	if !strings.Contains(gen.prompts[0], tools.ToolSearchProduct) {
		t.Fatal("agent prompt should name the search tool")
	}
}

type slowGenerator struct{ fakeGenerator }

func (g *slowGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestProcessQueryTimeout(t *testing.T) {
	s := newService(t, Config{Generator: &slowGenerator{}, Timeout: 20 * time.Millisecond})
	resp := s.ProcessQuery(context.Background(), model.QueryRequest{Message: "hi"})
	if len(resp.Actions) != 1 || resp.Actions[0].Message != MsgInternalError {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
}

func TestHealth(t *testing.T) {
	s := newService(t, Config{Generator: &fakeGenerator{mode: llm.ModeAgent}})
	h := s.Health()
	if h.Status != "ok" || h.CatalogBackend != "memory" || !h.CatalogReady || h.Tools != 2 || h.Mode != llm.ModeAgent {
		t.Fatalf("unexpected health %+v", h)
	}

	s = newService(t, Config{Catalog: catalog.NewUnavailable("vector", nil), Generator: &fakeGenerator{}})
	if h := s.Health(); h.Status != "degraded" || h.CatalogReady || h.CatalogBackend != "vector" {
		t.Fatalf("unexpected health %+v", h)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Config{Generator: &fakeGenerator{}}); err == nil {
		t.Fatal("expected error without catalog")
	}
	if _, err := New(Config{Catalog: catalog.NewMemory(nil)}); err == nil {
		t.Fatal("expected error without generator")
	}
}
