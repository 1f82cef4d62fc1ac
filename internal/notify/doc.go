// Package notify is the change-notification bus.
//
// Every accepted connection gets a Subscriber holding its monitoring filter.
// The Manager fans each notification out to all subscribers; a Subscriber
// decides under its own lock whether the notification matches and, if so,
// queues it on the connection's outbox.
package notify
