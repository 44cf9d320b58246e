package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dunglas/httpsfv"
)

// Header is the request header carrying the storefront context.
const Header = "Store-Context"

// ParseHeader extracts a Session from a Store-Context header.
// Format: channel="2", locale="en-US", version="v1.0.0" (RFC 8941 Dictionary).
//
// Examples:
//   - channel="2"                 → Session{Channel: "2"}
//   - channel=1;x=y, locale="pt-BR" → Session{Channel: "1", Locale: "pt-BR"} (params ignored)
//
// Unknown keys are ignored. Returns error if header is empty, malformed, or
// a known key holds something other than a string or integer.
func ParseHeader(header string) (Session, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Session{}, errors.New("empty Store-Context header")
	}

	dict, err := httpsfv.UnmarshalDictionary([]string{header})
	if err != nil {
		return Session{}, fmt.Errorf("invalid Store-Context header: %w", err)
	}

	var s Session
	for key, dst := range map[string]*string{
		"channel": &s.Channel,
		"locale":  &s.Locale,
		"version": &s.Version,
	} {
		v, err := stringMember(dict, key)
		if err != nil {
			return Session{}, err
		}
		*dst = v
	}
	return s, nil
}

// FormatHeader renders s as a Store-Context header. Empty fields are omitted.
func FormatHeader(s Session) (string, error) {
	dict := httpsfv.NewDictionary()
	for _, kv := range [][2]string{
		{"channel", s.Channel},
		{"locale", s.Locale},
		{"version", s.Version},
	} {
		if kv[1] != "" {
			dict.Add(kv[0], httpsfv.NewItem(kv[1]))
		}
	}
	return httpsfv.Marshal(dict)
}

// stringMember reads key as a string. Integer items are accepted so that
// channel=2 and channel="2" mean the same thing.
func stringMember(dict *httpsfv.Dictionary, key string) (string, error) {
	member, ok := dict.Get(key)
	if !ok {
		return "", nil
	}

	item, ok := member.(httpsfv.Item)
	if !ok {
		return "", fmt.Errorf("%s value must be an item", key)
	}

	switch v := item.Value.(type) {
	case string:
		return v, nil
	case httpsfv.Token:
		return string(v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	default:
		return "", fmt.Errorf("%s value must be a string", key)
	}
}
