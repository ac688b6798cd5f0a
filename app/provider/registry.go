package provider

import (
	"errors"
	"strings"
)

var ErrProviderNotSupported = errors.New("provider is not supported")

type Registry struct {
	providers map[string]Checkout
}

func NewRegistry(providers ...Checkout) *Registry {
	items := make(map[string]Checkout, len(providers))
	for _, p := range providers {
		items[strings.ToLower(p.Code())] = p
	}
	return &Registry{providers: items}
}

func (r *Registry) Get(code string) (Checkout, error) {
	provider, ok := r.providers[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrProviderNotSupported
	}
	return provider, nil
}
