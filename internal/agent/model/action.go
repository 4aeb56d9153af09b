package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Task identifies the kind of instruction an Action carries to the frontend.
type Task string

const (
	TaskResponse           Task = "response"
	TaskAddToCart          Task = "add-to-cart"
	TaskEmptyCart          Task = "empty-cart"
	TaskViewCart           Task = "view-cart"
	TaskSearch             Task = "search"
	TaskRecommend          Task = "recommend"
	TaskGiftRecommendation Task = "gift-recommendation"
	TaskCompare            Task = "compare"
	TaskCheckout           Task = "checkout"
	TaskUpdateContext      Task = "update-context"
)

// Known reports whether t is one of the tasks the frontend understands.
func (t Task) Known() bool {
	switch t {
	case TaskResponse, TaskAddToCart, TaskEmptyCart, TaskViewCart, TaskSearch,
		TaskRecommend, TaskGiftRecommendation, TaskCompare, TaskCheckout, TaskUpdateContext:
		return true
	}
	return false
}

// PersonDetails describes the recipient of a gift recommendation.
type PersonDetails struct {
	Gender      string `json:"gender,omitempty"`
	Age         *int   `json:"age,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

// HasAge reports whether a usable, non-zero age is present.
func (p *PersonDetails) HasAge() bool {
	return p != nil && p.Age != nil && *p.Age != 0
}

// UnmarshalJSON accepts age as a JSON number or a numeric string. Values that
// cannot be read as a whole number leave Age unset.
func (p *PersonDetails) UnmarshalJSON(data []byte) error {
	var raw struct {
		Gender      any             `json:"gender"`
		Age         json.RawMessage `json:"age"`
		Preferences any             `json:"preferences"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Gender = strings.TrimSpace(stringify(raw.Gender))
	p.Preferences = strings.TrimSpace(stringify(raw.Preferences))
	p.Age = parseAge(raw.Age)
	return nil
}

func parseAge(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, ok := boundedInt(n); ok {
			return &v
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32); err == nil {
			age := int(v)
			return &age
		}
	}
	return nil
}

// boundedInt truncates n toward zero when it fits in an int32.
func boundedInt(n float64) (int, bool) {
	if math.IsNaN(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// stringify renders scalar JSON values as text; preferences sometimes arrive
// as a list of strings, which is joined with commas.
func stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []any:
		parts := make([]string, 0, len(vv))
		for _, item := range vv {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(vv)
	}
}

// Action is one structured instruction for the frontend. Fields that are not
// modelled are kept verbatim in Extra so pass-through tasks round-trip unchanged.
type Action struct {
	Task          Task
	Message       string
	Query         string
	ProductIDs    []string // emitted whenever non-nil; an empty slice serialises as []
	Quantity      *int
	PersonDetails *PersonDetails
	Context       map[string]any
	Extra         map[string]json.RawMessage
}

// NewResponse builds a plain message action.
func NewResponse(message string) Action {
	return Action{Task: TaskResponse, Message: message}
}

// UnmarshalJSON decodes an action object. Known keys that fail typed decoding
// are preserved in Extra instead of failing the whole action.
func (a *Action) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*a = Action{}
	keep := func(k string, v json.RawMessage) {
		if a.Extra == nil {
			a.Extra = map[string]json.RawMessage{}
		}
		a.Extra[k] = v
	}

	for k, v := range fields {
		switch k {
		case "task":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				keep(k, v)
				continue
			}
			a.Task = Task(strings.TrimSpace(s))
		case "message":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				keep(k, v)
				continue
			}
			a.Message = s
		case "query":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				keep(k, v)
				continue
			}
			a.Query = s
		case "product_ids":
			ids, ok := decodeProductIDs(v)
			if !ok {
				continue
			}
			a.ProductIDs = ids
		case "quantity":
			var n float64
			if err := json.Unmarshal(v, &n); err != nil {
				keep(k, v)
				continue
			}
			q, ok := boundedInt(n)
			if !ok {
				keep(k, v)
				continue
			}
			a.Quantity = &q
		case "person_details":
			if string(v) == "null" {
				continue
			}
			var pd PersonDetails
			if err := json.Unmarshal(v, &pd); err != nil {
				keep(k, v)
				continue
			}
			a.PersonDetails = &pd
		case "context":
			var m map[string]any
			if err := json.Unmarshal(v, &m); err != nil {
				keep(k, v)
				continue
			}
			a.Context = m
		default:
			keep(k, v)
		}
	}
	return nil
}

// decodeProductIDs keeps string identifiers, reduces product objects to their
// "id" field and drops anything else. Inline product records never survive.
func decodeProductIDs(raw json.RawMessage) ([]string, bool) {
	if string(raw) == "null" {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
			return []string{strings.TrimSpace(single)}, true
		}
		return []string{}, true
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				ids = append(ids, s)
			}
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && strings.TrimSpace(obj.ID) != "" {
			ids = append(ids, strings.TrimSpace(obj.ID))
		}
	}
	return ids, true
}

// MarshalJSON writes the action with "task" first, followed by the modelled
// fields and then any preserved extra keys in sorted order.
func (a Action) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := map[string]bool{}
	writeRaw := func(key string, b []byte) {
		if len(written) > 0 {
			buf.WriteByte(',')
		}
		written[key] = true
		kb, _ := json.Marshal(key)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(b)
	}
	write := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		writeRaw(key, b)
		return nil
	}

	fields := []struct {
		key string
		set bool
		val any
	}{
		{"task", a.Task != "" || a.Extra["task"] == nil, a.Task},
		{"message", a.Message != "", a.Message},
		{"query", a.Query != "", a.Query},
		{"product_ids", a.ProductIDs != nil, a.ProductIDs},
		{"quantity", a.Quantity != nil, a.Quantity},
		{"person_details", a.PersonDetails != nil, a.PersonDetails},
		{"context", a.Context != nil, a.Context},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		if err := write(f.key, f.val); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(a.Extra)) {
		if written[k] {
			continue
		}
		writeRaw(k, a.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy so normalisation never mutates caller-owned data.
func (a Action) Clone() Action {
	out := a
	if a.ProductIDs != nil {
		out.ProductIDs = append([]string{}, a.ProductIDs...)
	}
	if a.Quantity != nil {
		q := *a.Quantity
		out.Quantity = &q
	}
	if a.PersonDetails != nil {
		pd := *a.PersonDetails
		if pd.Age != nil {
			age := *pd.Age
			pd.Age = &age
		}
		out.PersonDetails = &pd
	}
	if a.Context != nil {
		out.Context = make(map[string]any, len(a.Context))
		for k, v := range a.Context {
			out.Context[k] = v
		}
	}
	if a.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(a.Extra))
		for k, v := range a.Extra {
			out.Extra[k] = append(json.RawMessage{}, v...)
		}
	}
	return out
}
