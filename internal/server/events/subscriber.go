package events

// Subscriber consumes broker events. Send must not block.
type Subscriber interface {
	Send(Event) error
	Close() error
}

type funcSubscriber struct {
	fn func(Event)
}

// Func adapts fn to a Subscriber.
func Func(fn func(Event)) Subscriber {
	return &funcSubscriber{fn: fn}
}

func (f *funcSubscriber) Send(e Event) error {
	f.fn(e)
	return nil
}

func (f *funcSubscriber) Close() error { return nil }
