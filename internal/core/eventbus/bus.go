package eventbus

import "sync"

// EventBus dispatches events synchronously to subscribers. A nil *EventBus
// is valid and drops everything.
type EventBus struct {
	hooks hooks

	mu   sync.RWMutex
	next int
	subs map[Event][]subscriber
}

type subscriber struct {
	id int
	fn func(any)
}

// New creates an empty bus.
func New() *EventBus {
	return &EventBus{subs: make(map[Event][]subscriber)}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) func() {
	if bus == nil {
		return func() {}
	}

	bus.mu.Lock()
	bus.next++
	id := bus.next
	bus.subs[event] = append(bus.subs[event], subscriber{id: id, fn: fn})
	bus.mu.Unlock()

	bus.runOnSubscribe(event)

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		subs := bus.subs[event]
		for i, s := range subs {
			if s.id == id {
				bus.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (bus *EventBus) publish(event Event, payload any) {
	if bus == nil {
		return
	}

	bus.mu.RLock()
	subs := make([]subscriber, len(bus.subs[event]))
	copy(subs, bus.subs[event])
	bus.mu.RUnlock()

	bus.runOnPublish(event, payload)

	for _, s := range subs {
		bus.dispatch(event, payload, s.fn)
	}
}

func (bus *EventBus) dispatch(event Event, payload any, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(event, payload, r)
		}
	}()
	fn(payload)
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) func() {
	return bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

// SubscribeAll registers fn for every event type. The returned function
// removes all of the registrations.
func (bus *EventBus) SubscribeAll(fn func(Event, any)) func() {
	var cancels []func()
	for event := range Events {
		e := event
		cancels = append(cancels, bus.subscribe(e, func(p any) { fn(e, p) }))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

func (bus *EventBus) PublishBatchEditingStarted(p BatchEditingStartedPayload) {
	bus.publish(EventBatchEditingStarted, p)
}

func (bus *EventBus) SubscribeBatchEditingStarted(fn func(BatchEditingStartedPayload)) func() {
	return subscribe(bus, EventBatchEditingStarted, fn)
}

func (bus *EventBus) PublishBatchEditingStopped(p BatchEditingStoppedPayload) {
	bus.publish(EventBatchEditingStopped, p)
}

func (bus *EventBus) SubscribeBatchEditingStopped(fn func(BatchEditingStoppedPayload)) func() {
	return subscribe(bus, EventBatchEditingStopped, fn)
}

func (bus *EventBus) PublishCellEditValuesChanged(p CellEditValuesChangedPayload) {
	bus.publish(EventCellEditValuesChanged, p)
}

func (bus *EventBus) SubscribeCellEditValuesChanged(fn func(CellEditValuesChangedPayload)) func() {
	return subscribe(bus, EventCellEditValuesChanged, fn)
}

func (bus *EventBus) PublishCellEditingStarted(p CellEditingStartedPayload) {
	bus.publish(EventCellEditingStarted, p)
}

func (bus *EventBus) SubscribeCellEditingStarted(fn func(CellEditingStartedPayload)) func() {
	return subscribe(bus, EventCellEditingStarted, fn)
}

func (bus *EventBus) PublishCellEditingStopped(p CellEditingStoppedPayload) {
	bus.publish(EventCellEditingStopped, p)
}

func (bus *EventBus) SubscribeCellEditingStopped(fn func(CellEditingStoppedPayload)) func() {
	return subscribe(bus, EventCellEditingStopped, fn)
}

func (bus *EventBus) PublishCellValueChanged(p CellValueChangedPayload) {
	bus.publish(EventCellValueChanged, p)
}

func (bus *EventBus) SubscribeCellValueChanged(fn func(CellValueChangedPayload)) func() {
	return subscribe(bus, EventCellValueChanged, fn)
}

func (bus *EventBus) PublishRowEditingStarted(p RowEditingStartedPayload) {
	bus.publish(EventRowEditingStarted, p)
}

func (bus *EventBus) SubscribeRowEditingStarted(fn func(RowEditingStartedPayload)) func() {
	return subscribe(bus, EventRowEditingStarted, fn)
}

func (bus *EventBus) PublishRowEditingStopped(p RowEditingStoppedPayload) {
	bus.publish(EventRowEditingStopped, p)
}

func (bus *EventBus) SubscribeRowEditingStopped(fn func(RowEditingStoppedPayload)) func() {
	return subscribe(bus, EventRowEditingStopped, fn)
}

func (bus *EventBus) PublishRowValidated(p RowValidatedPayload) {
	bus.publish(EventRowValidated, p)
}

func (bus *EventBus) SubscribeRowValidated(fn func(RowValidatedPayload)) func() {
	return subscribe(bus, EventRowValidated, fn)
}

func (bus *EventBus) PublishRowValueChanged(p RowValueChangedPayload) {
	bus.publish(EventRowValueChanged, p)
}

func (bus *EventBus) SubscribeRowValueChanged(fn func(RowValueChangedPayload)) func() {
	return subscribe(bus, EventRowValueChanged, fn)
}
