package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// FallbackLocale is consulted when a key is missing in the active locale.
const FallbackLocale = "en-US"

//go:embed messages.yaml
var defaultCatalogue []byte

// Translator resolves dotted message keys for a locale.
type Translator interface {
	T(key string) string
}

// Catalogue holds flattened messages per locale.
type Catalogue struct {
	mu       sync.RWMutex
	locale   string
	messages map[string]map[string]string
}

// Default returns a catalogue loaded from the bundled messages for the given locale.
func Default(locale string) (*Catalogue, error) {
	return Load(defaultCatalogue, locale)
}

// Load parses a YAML document keyed by locale into a catalogue.
func Load(data []byte, locale string) (*Catalogue, error) {
	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("i18n: parse catalogue: %w", err)
	}

	messages := make(map[string]map[string]string, len(raw))
	for loc, tree := range raw {
		flat := make(map[string]string)
		flatten("", tree, flat)
		messages[loc] = flat
	}

	c := &Catalogue{messages: messages}
	c.SetLocale(locale)
	return c, nil
}

// SetLocale switches the active locale. An empty value selects the fallback locale.
func (c *Catalogue) SetLocale(locale string) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = FallbackLocale
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.locale = locale
}

// Locale returns the active locale.
func (c *Catalogue) Locale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

// Locales lists the locales present in the catalogue.
func (c *Catalogue) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for loc := range c.messages {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// T translates key. Missing keys fall back to FallbackLocale and finally to the key itself.
func (c *Catalogue) T(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if msg, ok := c.messages[c.locale][key]; ok {
		return msg
	}
	if msg, ok := c.messages[FallbackLocale][key]; ok {
		return msg
	}
	return key
}

// Has reports whether key is translated in the active or fallback locale.
func (c *Catalogue) Has(key string) bool {
	return c.T(key) != key
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flatten(full, v, out)
		case string:
			out[full] = v
		case nil:
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}
