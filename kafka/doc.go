// Package kafka publishes engine events to a Kafka topic.
//
// A Producer wraps a kafka-go Writer with TLS/SASL transport setup and
// retried writes. EventPublisher adapts a Producer to engine.Subscriber so
// every state change and window result of a run becomes one JSON message,
// keyed by run id:
//
//	kafka:
//	  enabled: true
//	  brokers: ["localhost:9092"]
//	  topic: "dyne.events"
package kafka
