package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixConstruction = "cons"
	PrefixSession      = "sess"
	PrefixClient       = "client"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewConstructionID() string { return New(PrefixConstruction) }
func NewSessionID() string      { return New(PrefixSession) }
func NewClientID() string       { return New(PrefixClient) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
