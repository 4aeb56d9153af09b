package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	errx "github.com/shoppingmate-ai/server/internal/core/error"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImagePart(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name    string
		in      string
		mime    string
		uri     string
		wantErr bool
	}{
		{name: "data url", in: "data:image/webp;base64," + raw, mime: "image/webp"},
		{name: "bare base64 sniffed", in: raw, mime: "image/png"},
		{name: "unpadded base64", in: strings.TrimRight(raw, "="), mime: "image/png"},
		{name: "https url", in: "https://cdn.example.com/rooms/living.png", mime: "image/png", uri: "https://cdn.example.com/rooms/living.png"},
		{name: "url without extension", in: "http://example.com/photo", mime: "image/jpeg", uri: "http://example.com/photo"},
		{name: "empty", in: "  ", wantErr: true},
		{name: "not base64", in: "%%%not-an-image%%%", wantErr: true},
		{name: "text payload", in: base64.StdEncoding.EncodeToString([]byte("hello world")), wantErr: true},
		{name: "data url without base64", in: "data:image/png,abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, err := ImagePart(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImage) {
					t.Fatalf("expected ErrInvalidImage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.uri != "" {
				if part.FileData == nil || part.FileData.FileURI != tt.uri || part.FileData.MIMEType != tt.mime {
					t.Fatalf("unexpected file part %+v", part.FileData)
				}
				return
			}
			if part.InlineData == nil || part.InlineData.MIMEType != tt.mime {
				t.Fatalf("unexpected inline part %+v", part.InlineData)
			}
		})
	}
}

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func reply(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: genai.NewContentFromText(text, genai.RoleModel),
	}}}
}

func TestGenAICaptioner(t *testing.T) {
	models := &fakeModels{resp: reply(" Scandinavian minimalist \n")}
	c := NewGenAICaptioner(models, "gemini-2.5-flash")

	got, err := c.Caption(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Scandinavian minimalist" {
		t.Fatalf("caption = %q", got)
	}
	if models.model != "gemini-2.5-flash" || len(models.contents) != 1 {
		t.Fatalf("unexpected request model=%s contents=%d", models.model, len(models.contents))
	}
	parts := models.contents[0].Parts
	if len(parts) != 2 || !strings.Contains(parts[0].Text, "interior design style") || parts[1].InlineData == nil {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestGenAICaptionerFailures(t *testing.T) {
	img := base64.StdEncoding.EncodeToString(pngHeader)

	if _, err := NewGenAICaptioner(&fakeModels{err: errors.New("quota")}, "m").Caption(context.Background(), img); err == nil {
		t.Fatal("expected provider error")
	}
	if _, err := NewGenAICaptioner(&fakeModels{resp: reply("  ")}, "m").Caption(context.Background(), img); !errors.Is(err, errx.ErrEmptyModelResponse) {
		t.Fatalf("expected empty response, got %v", err)
	}
	models := &fakeModels{resp: reply("boho")}
	if _, err := NewGenAICaptioner(models, "m").Caption(context.Background(), "???"); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected invalid image, got %v", err)
	}
	if models.contents != nil {
		t.Fatal("model called for an invalid image")
	}
}
