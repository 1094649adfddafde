package ulog

import "github.com/pkg/errors"

// registry validates and stores the layouts of a session.
type registry struct {
	layouts map[string]*Layout
	order   []*Layout
}

func newRegistry() *registry {
	return &registry{layouts: make(map[string]*Layout)}
}

// check validates fields and builds the layout that register would store
// under name, without storing it.
//
// The checks run in a fixed order: timestamp field, duplicate name, naming
// patterns, then field types and alignment.
func (r *registry) check(name string, fields []Field) (*Layout, error) {
	if err := checkTimestamp(fields); err != nil {
		return nil, err
	}
	if _, ok := r.layouts[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateLayout, "%s", name)
	}
	if err := checkNames(name, fields); err != nil {
		return nil, err
	}
	size, err := packedSize(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "layout %s", name)
	}
	return &Layout{
		name:   name,
		fields: append([]Field(nil), fields...),
		size:   size,
	}, nil
}

// add stores a layout returned by check.
func (r *registry) add(l *Layout) {
	r.layouts[l.name] = l
	r.order = append(r.order, l)
}

// register is check followed by add.
func (r *registry) register(name string, fields []Field) (*Layout, error) {
	l, err := r.check(name, fields)
	if err != nil {
		return nil, err
	}
	r.add(l)
	return l, nil
}

func (r *registry) lookup(name string) (*Layout, bool) {
	l, ok := r.layouts[name]
	return l, ok
}

// all returns the registered layouts in registration order.
func (r *registry) all() []*Layout {
	return append([]*Layout(nil), r.order...)
}
