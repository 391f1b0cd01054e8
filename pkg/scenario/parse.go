package scenario

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoExchanges is returned when neither parse strategy found a complete exchange.
var ErrNoExchanges = errors.New("no exchanges found in response")

var (
	listKeys   = []string{"exchanges", "conversation", "dialogue"}
	playerKeys = []string{"player", "user", "input"}
	npcKeys    = []string{"npc", "assistant", "output", "response"}
)

// Parse extracts exchanges from a model response. Code fences are stripped,
// then the payload is read as JSON; when that yields nothing the line-oriented
// fallback runs. The result always holds at least one valid exchange.
func Parse(raw string) ([]Exchange, error) {
	content := StripFences(raw)

	if exchanges, err := ParseJSON(content); err == nil {
		return exchanges, nil
	}

	return ParseLines(content)
}

// StripFences removes leading and trailing markdown code fences.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the info string, e.g. "json"
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
				s = s[nl+1:]
			}
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseJSON reads an object holding an exchange array. Entries that are not
// objects or lack either side are skipped.
func ParseJSON(content string) ([]Exchange, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}

	var list []json.RawMessage
	found := false
	for _, key := range listKeys {
		raw, ok := lookup(doc, key)
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			continue
		}
		found = true
		break
	}
	if !found {
		return nil, ErrNoExchanges
	}

	exchanges := make([]Exchange, 0, len(list))
	for _, item := range list {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		ex := Exchange{
			Player: firstString(fields, playerKeys),
			NPC:    firstString(fields, npcKeys),
		}
		if !ex.Valid() {
			continue
		}
		exchanges = append(exchanges, ex)
	}

	if len(exchanges) == 0 {
		return nil, ErrNoExchanges
	}
	return exchanges, nil
}

// ParseLines scans for "player ...: text" and "npc ...: text" lines and pairs
// each player line with the next npc line. A trailing player line without a
// reply is discarded.
func ParseLines(content string) ([]Exchange, error) {
	var (
		exchanges []Exchange
		player    string
	)

	for _, line := range strings.Split(content, "\n") {
		marker, text, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		marker = strings.ToLower(marker)
		text = cleanValue(text)

		switch {
		case strings.Contains(marker, "player"):
			player = text
		case strings.Contains(marker, "npc"):
			ex := Exchange{Player: player, NPC: text}
			if player != "" && ex.Valid() {
				exchanges = append(exchanges, ex)
				player = ""
			}
		}
	}

	if len(exchanges) == 0 {
		return nil, ErrNoExchanges
	}
	return exchanges, nil
}

func lookup(doc map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if raw, ok := doc[key]; ok {
		return raw, true
	}
	for k, raw := range doc {
		if strings.EqualFold(k, key) {
			return raw, true
		}
	}
	return nil, false
}

func firstString(fields map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		raw, ok := lookup(fields, key)
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// cleanValue trims the text after a line marker. Quoted values are what is
// left of half-broken JSON, so trailing commas and closing brackets go too.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		s = strings.TrimRight(s, " \t,}]")
		s = strings.Trim(s, `"`)
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.TrimSuffix(s, ","))
}
