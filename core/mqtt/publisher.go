package mqtt

// Publisher is the message-bus capability the simulation core requires.
// Publish is fire and forget: the transport owns delivery guarantees and
// surfaces no synchronous delivery error to the caller.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retain bool) error
	Close()
}
