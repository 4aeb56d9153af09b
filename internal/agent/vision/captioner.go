// Package vision describes the room in an uploaded photo.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shoppingmate-ai/server/internal/agent/graph/prompts"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

var ErrInvalidImage = errors.New("image payload is not a data URL, base64 image or http(s) URL")

// Captioner returns a short style description of the room in an image.
type Captioner interface {
	Caption(ctx context.Context, image string) (string, error)
}

// ContentGenerator is the part of *genai.Models the captioner uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GenAICaptioner struct {
	models ContentGenerator
	model  string
}

// NewGenAICaptioner builds a captioner on client.Models.
func NewGenAICaptioner(models ContentGenerator, model string) *GenAICaptioner {
	return &GenAICaptioner{models: models, model: model}
}

func (c *GenAICaptioner) Caption(ctx context.Context, image string) (string, error) {
	imagePart, err := ImagePart(image)
	if err != nil {
		return "", err
	}
	instruction, err := prompts.RenderVisionInstruction(ctx)
	if err != nil {
		return "", err
	}

	start := time.Now()
	parts := []*genai.Part{genai.NewPartFromText(instruction), imagePart}
	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", errx.WrapModel(fmt.Errorf("caption image: %w", err))
	}
	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		return "", errx.WrapModel(errx.ErrEmptyModelResponse)
	}

	logx.Debug().
		Str("component", "vision").
		Str("model", c.model).
		Str("caption", text).
		Dur("latency", time.Since(start)).
		Msg("room described")
	return text, nil
}

// ImagePart converts an upload into a genai part. Accepted forms are
// data URLs, bare base64 and http(s) URLs.
func ImagePart(image string) (*genai.Part, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, ErrInvalidImage
	}

	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		u, err := url.Parse(image)
		if err != nil || u.Host == "" {
			return nil, ErrInvalidImage
		}
		mimeType := mime.TypeByExtension(path.Ext(u.Path))
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/jpeg"
		}
		return genai.NewPartFromURI(image, mimeType), nil
	}

	mimeType := ""
	payload := image
	if strings.HasPrefix(image, "data:") {
		header, data, ok := strings.Cut(strings.TrimPrefix(image, "data:"), ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, ErrInvalidImage
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = data
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: content type %s", ErrInvalidImage, mimeType)
	}
	return genai.NewPartFromBytes(data, mimeType), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
