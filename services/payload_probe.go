package services

import (
	"strings"

	"fund-portal/utils"

	"github.com/tidwall/gjson"
)

// payloadScope is the set of objects a field may live on in one raw submission.
type payloadScope struct {
	root   gjson.Result
	sub    gjson.Result
	detail gjson.Result
}

// accessor reads one candidate location of a field.
type accessor func(payloadScope) gjson.Result

// keySpellings expands a snake_case key into the spellings the backend has emitted over
// time: snake_case, PascalCase (with Go style "ID"), camelCase.
func keySpellings(snake string) []string {
	parts := strings.Split(snake, "_")
	var pascal strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		pascal.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	p := pascal.String()
	camel := ""
	if p != "" {
		camel = strings.ToLower(p[:1]) + p[1:]
	}

	spellings := []string{snake, p}
	if strings.HasSuffix(p, "Id") {
		spellings = append(spellings, strings.TrimSuffix(p, "Id")+"ID")
	}
	spellings = append(spellings, camel)
	if strings.HasSuffix(camel, "Id") {
		spellings = append(spellings, strings.TrimSuffix(camel, "Id")+"ID")
	}

	seen := make(map[string]struct{}, len(spellings))
	out := spellings[:0]
	for _, s := range spellings {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func fieldIn(pick func(payloadScope) gjson.Result, keys ...string) []accessor {
	accs := make([]accessor, 0, len(keys)*3)
	for _, key := range keys {
		for _, spelling := range keySpellings(key) {
			name := spelling
			accs = append(accs, func(s payloadScope) gjson.Result {
				obj := pick(s)
				if !obj.IsObject() {
					return gjson.Result{}
				}
				return obj.Get(gjson.Escape(name))
			})
		}
	}
	return accs
}

func inRoot(keys ...string) []accessor {
	return fieldIn(func(s payloadScope) gjson.Result { return s.root }, keys...)
}

func inSubmission(keys ...string) []accessor {
	return fieldIn(func(s payloadScope) gjson.Result { return s.sub }, keys...)
}

func inDetail(keys ...string) []accessor {
	return fieldIn(func(s payloadScope) gjson.Result { return s.detail }, keys...)
}

// inNested probes keys on the first object found under any spelling of objectKey
// on the submission or detail.
func inNested(on func(payloadScope) gjson.Result, objectKey string, keys ...string) []accessor {
	return fieldIn(func(s payloadScope) gjson.Result {
		return firstObject(on(s), objectKey)
	}, keys...)
}

func detailObj(s payloadScope) gjson.Result     { return s.detail }
func submissionObj(s payloadScope) gjson.Result { return s.sub }

func firstObject(obj gjson.Result, key string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	for _, spelling := range keySpellings(key) {
		if v := obj.Get(gjson.Escape(spelling)); v.IsObject() {
			return v
		}
	}
	return gjson.Result{}
}

func chain(groups ...[]accessor) []accessor {
	var out []accessor
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// present reports whether a probed value counts as "non-empty".
func present(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.String:
		return strings.TrimSpace(r.Str) != ""
	case gjson.JSON:
		raw := strings.TrimSpace(r.Raw)
		return raw != "{}" && raw != "[]" && raw != ""
	default:
		return r.Exists()
	}
}

func probe(s payloadScope, accs []accessor) gjson.Result {
	for _, acc := range accs {
		if v := acc(s); present(v) {
			return v
		}
	}
	return gjson.Result{}
}

func probeString(s payloadScope, accs []accessor) *string {
	for _, acc := range accs {
		v := acc(s)
		if !present(v) || v.IsObject() || v.IsArray() {
			continue
		}
		text := strings.TrimSpace(v.String())
		return &text
	}
	return nil
}

func probeAmount(s payloadScope, accs []accessor) *float64 {
	for _, acc := range accs {
		v := acc(s)
		if !present(v) {
			continue
		}
		if amount := utils.ParseAmount(v.Value()); amount != nil {
			return amount
		}
	}
	return nil
}

func probeID(s payloadScope, accs []accessor) *int {
	for _, acc := range accs {
		v := acc(s)
		if !present(v) {
			continue
		}
		if id := utils.ParseID(v.Value()); id != nil {
			return id
		}
	}
	return nil
}

func valueOrPlaceholder(v *string, placeholder string) string {
	if v == nil || *v == "" {
		return placeholder
	}
	return *v
}
