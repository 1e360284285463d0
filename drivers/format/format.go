// Package format shapes generic send data into vendor payloads
package format

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
)

// DefaultMessage is sent when data carries no text at all
const DefaultMessage = "Message from Automation Connect"

// Text returns the first non-empty string among keys, else fallback
func Text(data map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// Slack builds an incoming-webhook payload: data passes through when it has
// text, a bare message becomes text, blocks and attachments are kept
func Slack(data map[string]any) map[string]any {
	if _, ok := data["text"]; ok {
		return data
	}
	if msg, ok := data["message"].(string); ok {
		return map[string]any{"text": msg}
	}
	out := map[string]any{"text": DefaultMessage}
	for _, k := range []string{"blocks", "attachments"} {
		if v, ok := data[k]; ok {
			out[k] = v
		}
	}
	return out
}

// SlackAPI builds a chat.postMessage body; data and extra override the defaults
func SlackAPI(data, extra map[string]any, defaultChannel string) map[string]any {
	out := map[string]any{
		"channel": Text(data, defaultChannel, "channel"),
		"text":    Text(data, DefaultMessage, "text", "message"),
	}
	maps.Copy(out, data)
	maps.Copy(out, extra)
	return out
}

// Discord builds a webhook execute body
func Discord(data map[string]any, defaultUsername string) map[string]any {
	out := map[string]any{
		"content":  Text(data, DefaultMessage, "content", "message", "text"),
		"username": Text(data, defaultUsername, "username"),
	}
	for _, k := range []string{"embeds", "avatar_url", "tts"} {
		if v, ok := data[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Telegram builds a sendMessage body with HTML parse mode unless data says otherwise
func Telegram(data map[string]any, defaultChatID string) map[string]any {
	var chatID any = defaultChatID
	if v, ok := data["chat_id"]; ok && v != nil {
		chatID = v
	}
	return map[string]any{
		"chat_id":    chatID,
		"text":       Text(data, DefaultMessage, "text", "message"),
		"parse_mode": Text(data, "HTML", "parse_mode"),
	}
}

// TitleCase turns snake_case or lower keys into "Title Case", as Airtable column names
// are usually written
func TitleCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// TitleCaseFields renames every top level key with TitleCase
func TitleCaseFields(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[TitleCase(k)] = v
	}
	return out
}

// Properties flattens data into HubSpot's string properties; nested values are
// rendered with %v, nil values dropped
func Properties(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}

// Row orders data into a sheet row. With columns the row follows them (missing
// cells are empty), otherwise keys are sorted.
func Row(data map[string]any, columns []string) []any {
	if len(columns) == 0 {
		columns = slices.Sorted(maps.Keys(data))
	}
	row := make([]any, len(columns))
	for i, c := range columns {
		if v, ok := data[c]; ok && v != nil {
			row[i] = v
		} else {
			row[i] = ""
		}
	}
	return row
}
