package bus

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/schema"
	"main/internal/serde"
	"main/internal/sink"
)

const defaultName = "MessageBus"

// Request links a message to the callback that consumes its response.
type Request struct {
	ID       string
	Callback func(msg any)
	Payload  any
}

// Response answers a pending request through its correlation id.
type Response struct {
	CorrelationID string
	Payload       any
}

// Config carries the construction parameters of the bus.
type Config struct {
	TraderID   string
	InstanceID string // UUID string, generated when empty
	Name       string

	Serializer serde.Serializer
	Database   sink.Sink // non-nil enables external publishing
	Metrics    *obs.Metrics

	// TypesFilter lists message types excluded from external publishing.
	// It is consumed at construction: New clears it in the caller's copy.
	TypesFilter []reflect.Type
}

// MessageBus multiplexes point-to-point send, request/response correlation
// and wildcard publish/subscribe over a single registry.
//
// The bus is not thread-safe. All entry points must be invoked from the
// single owning thread of the platform event loop; handlers run
// synchronously and may re-enter the bus.
type MessageBus struct {
	traderID   string
	instanceID string
	name       string

	serializer  serde.Serializer
	database    sink.Sink
	hasBacking  bool
	publishable map[reflect.Type]struct{}
	metrics     *obs.Metrics

	endpoints     map[string]Handler
	correlation   map[string]func(msg any)
	subscriptions map[subKey]*subEntry
	ordered       []*subEntry // registration order, ties dispatch ordering
	cache         map[string][]Subscription

	sentCount uint64
	reqCount  uint64
	resCount  uint64
	pubCount  uint64
}

// New builds a bus from the configuration. The publishable-type set is
// computed here and cfg.TypesFilter is cleared afterwards so downstream
// code cannot apply the filter a second time.
func New(cfg *Config) (*MessageBus, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.TraderID == "" {
		return nil, fmt.Errorf("trader id is empty")
	}

	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	} else if _, err := uuid.Parse(instanceID); err != nil {
		return nil, fmt.Errorf("instance id is not a UUID: %q", cfg.InstanceID)
	}

	publishable := make(map[reflect.Type]struct{}, len(schema.ExternalPublishingTypes))
	for t := range schema.ExternalPublishingTypes {
		publishable[t] = struct{}{}
	}
	for _, t := range cfg.TypesFilter {
		if t == nil {
			continue
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		delete(publishable, t)
	}
	cfg.TypesFilter = nil

	return &MessageBus{
		traderID:      cfg.TraderID,
		instanceID:    instanceID,
		name:          name,
		serializer:    cfg.Serializer,
		database:      cfg.Database,
		hasBacking:    cfg.Database != nil,
		publishable:   publishable,
		metrics:       cfg.Metrics,
		endpoints:     make(map[string]Handler),
		correlation:   make(map[string]func(msg any)),
		subscriptions: make(map[subKey]*subEntry),
		cache:         make(map[string][]Subscription),
	}, nil
}

// TraderID returns the owning trader identifier.
func (b *MessageBus) TraderID() string { return b.traderID }

// InstanceID returns the bus instance UUID.
func (b *MessageBus) InstanceID() string { return b.instanceID }

// Name returns the component name.
func (b *MessageBus) Name() string { return b.name }

// HasBacking reports whether an external sink is configured.
func (b *MessageBus) HasBacking() bool { return b.hasBacking }

// SentCount returns the number of successful point-to-point sends.
func (b *MessageBus) SentCount() uint64 { return b.sentCount }

// ReqCount returns the number of successfully dispatched requests.
func (b *MessageBus) ReqCount() uint64 { return b.reqCount }

// ResCount returns the number of successfully dispatched responses.
func (b *MessageBus) ResCount() uint64 { return b.resCount }

// PubCount returns the number of completed publishes.
func (b *MessageBus) PubCount() uint64 { return b.pubCount }

// Close releases the external sink handle, if any.
func (b *MessageBus) Close() error {
	if b.database == nil {
		return nil
	}
	db := b.database
	b.database = nil
	b.hasBacking = false
	return db.Close()
}

// Register binds an endpoint name to exactly one handler.
func (b *MessageBus) Register(endpoint string, handler Handler) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is empty")
	}
	if !handler.valid() {
		return fmt.Errorf("handler is invalid")
	}
	if _, ok := b.endpoints[endpoint]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, endpoint)
	}
	b.endpoints[endpoint] = handler
	return nil
}

// Deregister removes the endpoint binding. The argument handler must be the
// registered one; identity is compared by handler id.
func (b *MessageBus) Deregister(endpoint string, handler Handler) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is empty")
	}
	if !handler.valid() {
		return fmt.Errorf("handler is invalid")
	}
	registered, ok := b.endpoints[endpoint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, endpoint)
	}
	if registered.ID != handler.ID {
		return fmt.Errorf("%w: %s", ErrHandlerMismatch, endpoint)
	}
	delete(b.endpoints, endpoint)
	return nil
}

// Send dispatches a message to the endpoint handler. An unknown endpoint is
// logged and dropped: a mis-routed message must not crash the event loop.
func (b *MessageBus) Send(endpoint string, msg any) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is empty")
	}
	if msg == nil {
		return fmt.Errorf("message is nil")
	}
	handler, ok := b.endpoints[endpoint]
	if !ok {
		logs.Errorf("%s: no endpoint registered at %q, dropping message", b.name, endpoint)
		b.metrics.IncDropped()
		return nil
	}
	handler.Fn(msg)
	b.sentCount++
	b.metrics.IncDispatch(obs.DispatchSend)
	return nil
}

// Request registers the response callback under the request id, then
// dispatches the request to the endpoint like Send.
//
// The correlation entry is inserted before the endpoint lookup, so a request
// to a missing endpoint leaves its entry pending. A later registration of
// the endpoint can still be answered through it.
func (b *MessageBus) Request(endpoint string, req *Request) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is empty")
	}
	if req == nil {
		return fmt.Errorf("request is nil")
	}
	if req.ID == "" {
		return fmt.Errorf("request id is empty")
	}
	if req.Callback == nil {
		return fmt.Errorf("request callback is nil")
	}
	if _, dup := b.correlation[req.ID]; dup {
		logs.Errorf("%s: request id %q already pending, dropping request", b.name, req.ID)
		b.metrics.IncDropped()
		return nil
	}
	b.correlation[req.ID] = req.Callback

	handler, ok := b.endpoints[endpoint]
	if !ok {
		logs.Errorf("%s: no endpoint registered at %q, dropping request %q", b.name, endpoint, req.ID)
		b.metrics.IncDropped()
		return nil
	}
	handler.Fn(req)
	b.reqCount++
	b.metrics.IncDispatch(obs.DispatchRequest)
	return nil
}

// Response pops the pending callback for the correlation id and invokes it
// with the response. At most one dispatch per request id.
func (b *MessageBus) Response(resp *Response) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if resp.CorrelationID == "" {
		return fmt.Errorf("correlation id is empty")
	}
	callback, ok := b.correlation[resp.CorrelationID]
	if !ok {
		logs.Errorf("%s: no request pending for correlation id %q, dropping response", b.name, resp.CorrelationID)
		b.metrics.IncDropped()
		return nil
	}
	delete(b.correlation, resp.CorrelationID)
	callback(resp)
	b.resCount++
	b.metrics.IncDispatch(obs.DispatchResponse)
	return nil
}

// Subscribe adds a subscription for the topic pattern and splices it into
// every cached resolution the pattern covers.
func (b *MessageBus) Subscribe(topic string, handler Handler, priority int) error {
	if topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if !handler.valid() {
		return fmt.Errorf("handler is invalid")
	}
	if priority < 0 {
		return fmt.Errorf("priority is negative")
	}

	sub := Subscription{Topic: topic, Handler: handler, Priority: priority}
	key := sub.key()
	if _, dup := b.subscriptions[key]; dup {
		logs.Warnf("%s: handler %q already subscribed to %q, keeping existing priority", b.name, handler.ID, topic)
		return nil
	}

	entry := &subEntry{sub: sub}
	for cached := range b.cache {
		if MatchTopic(cached, topic) {
			b.cache[cached] = insertSorted(b.cache[cached], sub)
			entry.topics = insertTopic(entry.topics, cached)
		}
	}
	b.subscriptions[key] = entry
	b.ordered = append(b.ordered, entry)
	return nil
}

// Unsubscribe removes the subscription and rewrites every cached resolution
// that contained it. Emptied cache entries are retained: a publish to such a
// topic dispatches to no one, which is correct.
func (b *MessageBus) Unsubscribe(topic string, handler Handler) error {
	if topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if !handler.valid() {
		return fmt.Errorf("handler is invalid")
	}

	key := subKey{topic: topic, handler: handler.ID}
	entry, ok := b.subscriptions[key]
	if !ok {
		logs.Warnf("%s: handler %q is not subscribed to %q", b.name, handler.ID, topic)
		b.metrics.IncDropped()
		return nil
	}
	for _, cached := range entry.topics {
		b.cache[cached] = removeSub(b.cache[cached], key)
	}
	delete(b.subscriptions, key)
	for i, e := range b.ordered {
		if e == entry {
			b.ordered = append(b.ordered[:i], b.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// Publish dispatches the message to every matching subscription in priority
// order, then optionally serializes it for the external sink.
func (b *MessageBus) Publish(topic string, msg any) error {
	if topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if msg == nil {
		return fmt.Errorf("message is nil")
	}

	subs, ok := b.cache[topic]
	if !ok {
		subs = b.resolve(topic)
	}

	// subs is a snapshot: mutation paths replace cached slices instead of
	// editing them, so a handler re-entering the bus cannot disturb the
	// in-flight iteration.
	start := time.Now()
	for _, sub := range subs {
		sub.Handler.Fn(msg)
	}
	b.metrics.ObservePublish(time.Since(start))

	if b.hasBacking && b.serializer != nil && b.isPublishable(msg) {
		emitStart := time.Now()
		payload, err := b.serializer.Marshal(msg)
		if err != nil {
			logs.Errorf("%s: serialize %T for topic %q failed: %+v", b.name, msg, topic, err)
		} else if err := b.database.Publish(topic, payload); err != nil {
			logs.Errorf("%s: external publish to topic %q failed: %+v", b.name, topic, err)
		} else {
			b.metrics.IncEmit()
			b.metrics.ObserveEmit(time.Since(emitStart))
		}
	}

	b.pubCount++
	b.metrics.IncDispatch(obs.DispatchPublish)
	return nil
}

// resolve scans the subscription index for patterns covering the topic,
// caches the priority-descending result and annotates each matching
// subscription with the topic.
func (b *MessageBus) resolve(topic string) []Subscription {
	var matched []*subEntry
	subs := make([]Subscription, 0, 4)
	for _, entry := range b.ordered {
		if MatchTopic(topic, entry.sub.Topic) {
			subs = append(subs, entry.sub)
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Priority > subs[j].Priority
	})
	b.cache[topic] = subs
	for _, entry := range matched {
		entry.topics = insertTopic(entry.topics, topic)
	}
	return subs
}

func (b *MessageBus) isPublishable(msg any) bool {
	t := reflect.TypeOf(msg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, ok := b.publishable[t]
	return ok
}

// insertSorted rebuilds a cached resolution with the subscription added,
// keeping priority-descending order and stable ties. The input slice is
// never mutated so in-flight dispatch snapshots stay intact.
func insertSorted(subs []Subscription, sub Subscription) []Subscription {
	out := make([]Subscription, 0, len(subs)+1)
	out = append(out, subs...)
	out = append(out, sub)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// removeSub rebuilds a cached resolution without the subscription. Removal
// preserves the existing order.
func removeSub(subs []Subscription, key subKey) []Subscription {
	out := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if s.key() != key {
			out = append(out, s)
		}
	}
	return out
}

// insertTopic inserts a topic into a sorted list, skipping duplicates.
func insertTopic(topics []string, topic string) []string {
	i := sort.SearchStrings(topics, topic)
	if i < len(topics) && topics[i] == topic {
		return topics
	}
	topics = append(topics, "")
	copy(topics[i+1:], topics[i:])
	topics[i] = topic
	return topics
}
