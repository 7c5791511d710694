package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message pairs a Job with its broker delivery state
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the message, optionally requeueing it; a non-requeued
// message dead-letters to the DLQ
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}
