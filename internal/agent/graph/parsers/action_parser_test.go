package parsers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shoppingmate-ai/server/internal/agent/model"
)

func TestParseActions(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		opts      Options
		failure   Failure
		wantTasks []model.Task
	}{
		{"array", `[{"task":"view-cart"},{"task":"checkout"}]`, Options{}, FailureNone, []model.Task{model.TaskViewCart, model.TaskCheckout}},
		{"empty array", `[]`, Options{}, FailureNone, nil},
		{"fenced", "```json\n[{\"task\":\"view-cart\"}]\n```", Options{}, FailureNone, []model.Task{model.TaskViewCart}},
		{"bare fence", "```\n[{\"task\":\"checkout\"}]\n```", Options{}, FailureNone, []model.Task{model.TaskCheckout}},
		{"not json", "not valid json", Options{}, FailureNotJSON, nil},
		{"object", `{"task":"view-cart"}`, Options{}, FailureNotArray, nil},
		{"number", `42`, Options{}, FailureNotArray, nil},
		{"null", `null`, Options{}, FailureNotArray, nil},
		{"padded null", " null \n", Options{AllowPlainText: true}, FailureNotArray, nil},
		{"fenced null", "```json\nnull\n```", Options{}, FailureNotArray, nil},
		{"non-object elements dropped", `["x",1,{"task":"checkout"},null]`, Options{}, FailureNone, []model.Task{model.TaskCheckout}},
		{"plain text wrapped", "Sure, here you go!", Options{AllowPlainText: true}, FailureNone, []model.Task{model.TaskResponse}},
		{"plain text still rejects objects", `{"task":"view-cart"}`, Options{AllowPlainText: true}, FailureNotArray, nil},
		{"empty reply", "   ", Options{AllowPlainText: true}, FailureNotJSON, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseActions(tt.content, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Failure != tt.failure {
				t.Fatalf("failure = %v, want %v", res.Failure, tt.failure)
			}
			if len(res.Actions) != len(tt.wantTasks) {
				t.Fatalf("got %d actions, want %d", len(res.Actions), len(tt.wantTasks))
			}
			for i, task := range tt.wantTasks {
				if res.Actions[i].Task != task {
					t.Fatalf("action %d task = %q, want %q", i, res.Actions[i].Task, task)
				}
			}
		})
	}
}

func TestParseActionsPlainTextKeepsMessage(t *testing.T) {
	res, err := ParseActions("  Hello there  ", Options{AllowPlainText: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Actions[0].Message != "Hello there" {
		t.Fatalf("message = %q", res.Actions[0].Message)
	}
}

func TestParseActionsOversizedReply(t *testing.T) {
	content := "[" + strings.Repeat(`{"task":"view-cart"},`, maxContentLen/20) + `{"task":"view-cart"}]`
	res, err := ParseActions(content, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ParsingMetadata["truncated"] != true {
		t.Fatalf("expected truncation to be recorded")
	}
	if res.Failure != FailureNotJSON {
		t.Fatalf("truncated reply should fail to parse, got %v", res.Failure)
	}
}

func TestParseActionsCapsActionCount(t *testing.T) {
	content := "[" + strings.Repeat(`{"task":"view-cart"},`, maxActions+5) + `{"task":"view-cart"}]`
	res, err := ParseActions(content, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Actions) != maxActions {
		t.Fatalf("got %d actions, want %d", len(res.Actions), maxActions)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 150)
	got := Snippet(s)
	if len(got) > maxErrSnippet {
		t.Fatalf("snippet length %d exceeds %d", len(got), maxErrSnippet)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("snippet split a rune: %q", got)
	}
	if got != strings.Repeat("é", maxErrSnippet/2) {
		t.Fatalf("unexpected snippet %q", got)
	}
	if Snippet("  short  ") != "short" {
		t.Fatalf("short input should only be trimmed")
	}
}
