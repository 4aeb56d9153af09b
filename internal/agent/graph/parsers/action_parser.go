package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shoppingmate-ai/server/internal/agent/model"
	errx "github.com/shoppingmate-ai/server/internal/core/error"
	logx "github.com/shoppingmate-ai/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxActions    = 100        // maximum number of actions kept from one reply
	maxErrSnippet = 200        // limit logged snippet size
)

// Failure classifies why a reply could not be used as an action list.
type Failure int

const (
	FailureNone     Failure = iota
	FailureNotJSON          // reply is not valid JSON
	FailureNotArray         // valid JSON, but not an array
)

func (f Failure) String() string {
	switch f {
	case FailureNotJSON:
		return "not_json"
	case FailureNotArray:
		return "not_array"
	}
	return "none"
}

type Options struct {
	// AllowPlainText turns a reply that is not JSON at all into a single
	// response action carrying the text. Agent runs finish with prose often
	// enough that this is the only useful reading of such a reply.
	AllowPlainText bool
}

type Result struct {
	Actions         []model.Action
	Failure         Failure
	ParsingMetadata map[string]any
}

// ParseActions decodes a model reply that should be a JSON array of action
// objects. Malformed replies are reported through Result.Failure; err is only
// set when the parser itself fails.
func ParseActions(content string, opts Options) (res *Result, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "action_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("action parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			res = nil
		}
	}()

	res = &Result{Actions: []model.Action{}, ParsingMetadata: map[string]any{}}

	addErr := func(msg string) {
		v, _ := res.ParsingMetadata["parsing_errors"].([]string)
		res.ParsingMetadata["parsing_errors"] = append(v, msg)
	}

	// content length guard
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "action_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
		res.ParsingMetadata["truncated"] = true
	}

	body, fenced := stripFence(content)
	if fenced {
		res.ParsingMetadata["fenced"] = true
	}

	if !json.Valid([]byte(body)) {
		if opts.AllowPlainText && body != "" {
			res.Actions = append(res.Actions, model.NewResponse(body))
			res.ParsingMetadata["plain_text"] = true
			return res, nil
		}
		res.Failure = FailureNotJSON
		logx.Warn().Str("component", "action_parser").Str("snippet", Snippet(body)).Msg("reply is not valid JSON")
		return res, nil
	}

	// null decodes into a nil slice without error
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elems); err != nil || elems == nil {
		res.Failure = FailureNotArray
		logx.Warn().Str("component", "action_parser").Str("snippet", Snippet(body)).Msg("reply is not a JSON array")
		return res, nil
	}

	for i, el := range elems {
		if len(res.Actions) >= maxActions {
			res.ParsingMetadata["actions_capped"] = true
			logx.Warn().
				Str("component", "action_parser").
				Int("max_actions", maxActions).
				Msg("action processing capped")
			break
		}
		trimmed := bytes.TrimSpace(el)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			addErr(fmt.Sprintf("element %d: not an object: %s", i, Snippet(string(trimmed))))
			continue
		}
		var a model.Action
		if err := json.Unmarshal(trimmed, &a); err != nil {
			addErr(fmt.Sprintf("element %d: %v", i, err))
			continue
		}
		res.Actions = append(res.Actions, a)
	}

	if errs, ok := res.ParsingMetadata["parsing_errors"].([]string); ok {
		logx.Warn().
			Str("component", "action_parser").
			Strs("errors", errs).
			Msg("dropped malformed action elements")
	}
	return res, nil
}

// stripFence removes surrounding whitespace and a markdown code fence such
// as ```json ... ```.
func stripFence(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s, false
	}
	inner := s[3 : len(s)-3]
	// drop the info string (e.g. "json") on the opening line
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if info := strings.TrimSpace(inner[:nl]); !strings.ContainsAny(info, "[{") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner), true
}

// --- helpers ---

// Snippet trims s for logging, cutting at a rune boundary.
func Snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	cut := maxErrSnippet
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
