package sink

// Sink consumes serialized publish payloads bound for the outside of the
// process. The bus hands it at most one pair per publish and assumes nothing
// about durability or ordering beyond the call returning.
type Sink interface {
	Publish(topic string, payload []byte) error
	Close() error
}
