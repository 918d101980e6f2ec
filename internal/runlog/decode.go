package runlog

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Decode normalizes any historical log encoding into the canonical ordered
// event list. Stored run logs have gone through several formats over time:
//
//  1. the canonical object {"events": [...]}
//  2. a bare JSON list of events
//  3. newline-delimited JSON objects (JSONL)
//  4. concatenated JSON objects with no separator
//  5. legacy free-text lines
//
// Decode accepts all of them and never returns an error; undecodable input
// yields an empty list.
func Decode(raw string) []Event {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Event{}
	}

	// Canonical object or bare list.
	var envelope struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Events != nil {
		return decodeRawEvents(envelope.Events)
	}
	var list []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return decodeRawEvents(list)
	}

	// JSON lines, one object per line.
	var events []Event
	jsonl := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		if ev, ok := decodeObject([]byte(line)); ok {
			events = append(events, ev)
			jsonl = true
		}
	}
	if jsonl && len(events) > 0 {
		return events
	}

	// Concatenated objects {...}{...}{...}.
	for _, part := range splitJSONObjects(raw) {
		if ev, ok := decodeObject([]byte(part)); ok {
			events = append(events, ev)
		}
	}
	if len(events) > 0 {
		return events
	}

	return decodeLegacyText(raw)
}

// decodeRawEvents converts raw JSON objects, skipping undecodable entries.
func decodeRawEvents(raws []json.RawMessage) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if ev, ok := decodeObject(raw); ok {
			events = append(events, ev)
		}
	}
	return events
}

// decodeObject maps one JSON object to an Event, tolerating older field
// names ("message" for msg, "where" for stage, "xpath" for rule) and folding
// unknown keys into Extra.
func decodeObject(raw []byte) (Event, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Event{}, false
	}

	ev := Event{
		Level:   stringField(m, "level"),
		Message: stringField(m, "msg", "message"),
		Stage:   stringField(m, "stage", "where"),
		URL:     stringField(m, "url"),
		Rule:    stringField(m, "rule", "xpath"),
		Time:    stringField(m, "ts", "timestamp"),
	}
	if ev.Level == "" {
		ev.Level = LevelInfo
	}

	// Nested canonical extras first, then stray flat keys.
	if extra, ok := m["extra"].(map[string]any); ok {
		for k, v := range extra {
			setExtra(&ev, k, v)
		}
	}
	known := map[string]bool{
		"level": true, "msg": true, "message": true, "stage": true,
		"where": true, "url": true, "rule": true, "xpath": true,
		"ts": true, "timestamp": true, "extra": true,
	}
	for k, v := range m {
		if !known[k] {
			setExtra(&ev, k, v)
		}
	}

	return ev, true
}

func setExtra(ev *Event, key string, value any) {
	s := stringify(value)
	if s == "" {
		return
	}
	if ev.Extra == nil {
		ev.Extra = make(map[string]string)
	}
	ev.Extra[key] = s
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.Trim(string(data), `"`)
	}
}

// splitJSONObjects splits concatenated top-level JSON objects by balancing
// braces, aware of strings and escapes.
func splitJSONObjects(s string) []string {
	var objs []string
	depth := 0
	start := -1
	inStr := false
	esc := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				objs = append(objs, s[start:i+1])
				start = -1
			}
		}
	}
	return objs
}

var (
	legacyTsRe    = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\s*`)
	legacyURLRe   = regexp.MustCompile(`https?://\S+`)
	legacyStageRe = regexp.MustCompile(`\[([a-zA-Z0-9_\-]+)\]`)
	legacyRuleRe  = regexp.MustCompile(`\|\s*(//.+)$`)
)

// decodeLegacyText is the last-resort heuristic parser for free-text logs
// produced before structured logging existed. It recovers level, stage, URL
// and rule where the old line format allows.
func decodeLegacyText(text string) []Event {
	events := []Event{}
	currentArticle := ""

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		ts := ""
		body := line
		if m := legacyTsRe.FindStringSubmatch(line); m != nil {
			ts = m[1]
			body = strings.TrimSpace(line[len(m[0]):])
		}
		low := strings.ToLower(body)

		level := LevelInfo
		switch {
		case strings.Contains(low, "falha") || strings.Contains(low, "error") ||
			strings.Contains(low, "exception") || strings.Contains(low, "traceback"):
			level = LevelError
		case strings.Contains(low, "warn") || strings.Contains(low, "aviso"):
			level = LevelWarn
		case strings.Contains(low, "skip") || strings.Contains(low, "ignorado"):
			level = LevelSkip
		case strings.Contains(low, "get 200") || strings.Contains(low, "ok"):
			level = LevelOK
		}

		stage := ""
		if m := legacyStageRe.FindStringSubmatch(body); m != nil {
			stage = m[1]
		}
		if stage == "" {
			switch {
			case strings.Contains(low, "xpath") || strings.Contains(low, "rule"):
				stage = "extract"
			case strings.Contains(low, "get 200"):
				stage = "http-get"
			default:
				stage = "log"
			}
		}

		url := legacyURLRe.FindString(body)
		if url != "" {
			currentArticle = url
		} else {
			url = currentArticle
		}

		rule := ""
		if m := legacyRuleRe.FindStringSubmatch(body); m != nil {
			rule = strings.TrimSpace(m[1])
		}

		ev := Event{
			Level:   level,
			Message: body,
			Stage:   stage,
			URL:     url,
			Rule:    rule,
			Time:    ts,
		}
		if currentArticle != "" {
			setExtra(&ev, "article_url", currentArticle)
		}
		events = append(events, ev)
	}
	return events
}
