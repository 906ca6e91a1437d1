package capability

import (
	"context"
	"errors"
	"strings"
)

// NewNamespacedStorage scopes a flat storage to a namespace by key
// prefixing. It is both the polyfill NamespaceFactory's mechanism and a
// usable wrapper in its own right.
func NewNamespacedStorage(base Storage, namespace string) Storage {
	return &prefixedStorage{base: base, prefix: namespace + ":"}
}

// prefixNamespaces is the shim NamespaceFactory for hosts without
// native storage namespaces.
type prefixNamespaces struct{}

func (prefixNamespaces) Namespace(base Storage, name string) Storage {
	return NewNamespacedStorage(base, name)
}

type prefixedStorage struct {
	base   Storage
	prefix string
}

func (p *prefixedStorage) Get(ctx context.Context, key string) (any, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	return p.base.Get(ctx, p.prefix+key)
}

func (p *prefixedStorage) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return ErrInvalidKey
	}
	return p.base.Set(ctx, p.prefix+key, value)
}

func (p *prefixedStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return p.base.Delete(ctx, p.prefix+key)
}

func (p *prefixedStorage) Keys(ctx context.Context) ([]string, error) {
	all, err := p.base.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, p.prefix) {
			keys = append(keys, strings.TrimPrefix(k, p.prefix))
		}
	}
	return keys, nil
}

// Clear removes only this namespace's keys; other namespaces sharing
// the base storage are untouched.
func (p *prefixedStorage) Clear(ctx context.Context) error {
	keys, err := p.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.Delete(ctx, k); err != nil && !errors.Is(err, ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

var _ Storage = (*prefixedStorage)(nil)
var _ NamespaceFactory = prefixNamespaces{}
