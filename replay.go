package ulog

import "github.com/pkg/errors"

// replayRecord caches every declaration made to a Writer, so that a new
// file can be given an equivalent header and identical subscriptions.
type replayRecord struct {
	infos          []KeyValue
	params         []KeyValue
	layouts        []*Layout
	headerComplete bool
	subs           []subscription
}

// setParam records the latest value of a parameter, keeping the order in
// which parameters were first declared.
func (rec *replayRecord) setParam(key string, value interface{}) {
	for i := range rec.params {
		if rec.params[i].Key == key {
			rec.params[i].Value = value
			return
		}
	}
	rec.params = append(rec.params, KeyValue{Key: key, Value: value})
}

// replay declares everything in rec on the fresh session s, in the order it
// was originally declared. Subscriptions are made in their original order,
// so every handle keeps its number.
func (rec *replayRecord) replay(s *session) error {
	for _, kv := range rec.infos {
		if err := s.registerInfo(kv.Key, kv.Value); err != nil {
			return errors.Wrapf(err, "info %s", kv.Key)
		}
	}
	for _, kv := range rec.params {
		if err := s.registerParameter(kv.Key, kv.Value); err != nil {
			return errors.Wrapf(err, "parameter %s", kv.Key)
		}
	}
	for _, l := range rec.layouts {
		if _, err := s.registerLayout(l.name, l.fields); err != nil {
			return errors.Wrapf(err, "layout %s", l.name)
		}
	}
	if !rec.headerComplete {
		return nil
	}
	if err := s.completeHeader(); err != nil {
		return err
	}
	for want, sub := range rec.subs {
		handle, err := s.subscribe(sub.name, sub.multiID)
		if err != nil {
			return errors.Wrapf(err, "subscription %s", sub.name)
		}
		if int(handle) != want {
			return errors.Errorf("subscription %s got handle %d, want %d", sub.name, handle, want)
		}
	}
	return nil
}
