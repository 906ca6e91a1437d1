package capability

import "fmt"

// bundleFactory is the shim ContextFactory: it assembles per-plugin
// capability bundles from the discrete providers older hosts expose.
type bundleFactory struct {
	reg *Registry
}

// NewContextFactory builds a ContextFactory over a registry's discrete
// storage, events, and http providers. Storage is scoped per plugin
// through the registered NamespaceFactory, falling back to key
// prefixing when the host has none.
func NewContextFactory(reg *Registry) ContextFactory {
	return &bundleFactory{reg: reg}
}

func (f *bundleFactory) ForPlugin(name string) (Bundle, error) {
	storage, ok := f.reg.Storage()
	if !ok {
		return Bundle{}, fmt.Errorf("storage capability unavailable")
	}
	events, ok := f.reg.Events()
	if !ok {
		return Bundle{}, fmt.Errorf("events capability unavailable")
	}
	httpc, ok := f.reg.HTTP()
	if !ok {
		return Bundle{}, fmt.Errorf("http capability unavailable")
	}

	namespaces, ok := f.reg.Namespaces()
	if !ok {
		namespaces = prefixNamespaces{}
	}

	return Bundle{
		Storage: namespaces.Namespace(storage, "plugin:"+name),
		Events:  events,
		HTTP:    httpc,
	}, nil
}
