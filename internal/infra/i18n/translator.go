package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// BotKeys lists every message key the bot renders. NewTranslator refuses a
// locale that lacks any of them.
var BotKeys = []string{
	"already_registered", "choose_position", "help", "commands",
	"choose_state", "choose_city", "subscribe_first", "location_requires_subscription",
	"city_saved", "city_removed", "unsubscribed", "not_subscribed",
	"digest_intro", "users_total", "users_row", "logs_empty",
	"rate_limited", "error_generic",
}

// Translator holds one locale. Nested YAML maps are flattened into dotted keys.
type Translator struct {
	lang     string
	messages map[string]string
}

// NewTranslator loads locales/<lang>.yaml from fsys and checks it against BotKeys.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	file := "locales/" + lang + ".yaml"
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", file, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("locale %s: %w", lang, err)
	}
	t.lang = lang
	if missing := t.Missing(BotKeys...); len(missing) > 0 {
		return nil, fmt.Errorf("locale %s lacks keys: %s", lang, strings.Join(missing, ", "))
	}
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	t := &Translator{messages: make(map[string]string, len(raw))}
	if err := t.flatten("", raw); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Translator) flatten(prefix string, node map[string]interface{}) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			t.messages[key] = val
		case map[string]interface{}:
			if err := t.flatten(key, val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: expected text or a nested map, got %T", key, v)
		}
	}
	return nil
}

func (t *Translator) Lang() string { return t.lang }

// Missing returns the keys absent from the locale, sorted.
func (t *Translator) Missing(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if _, ok := t.messages[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// T returns the message for key formatted with args, or the key itself when absent.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
