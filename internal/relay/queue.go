// Package relay holds staff messages until the game server polls for them.
package relay

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankbot_relay_messages_queued_total",
		Help: "Staff messages pushed to the relay queue",
	})

	messagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankbot_relay_messages_relayed_total",
		Help: "Staff messages handed to the game server",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rankbot_relay_queue_depth",
		Help: "Messages waiting for the game server",
	})
)

// Queue is an append/drain list shared by the chat handlers and the HTTP poller.
type Queue struct {
	mu       sync.Mutex
	messages []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a message.
func (q *Queue) Push(msg string) {
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	n := len(q.messages)
	q.mu.Unlock()

	messagesQueued.Inc()
	queueDepth.Set(float64(n))
}

// Drain returns every queued message in push order and empties the queue.
// A message pushed concurrently lands either in this batch or the next one.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	out := q.messages
	q.messages = nil
	q.mu.Unlock()

	messagesRelayed.Add(float64(len(out)))
	queueDepth.Set(0)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName keeps only characters the game accepts in a player name.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "")
}

// StaffMessage formats a chat line as the game server prints it: "<name@Discord> text".
func StaffMessage(name, text string) string {
	return fmt.Sprintf("<%s@Discord> %s", SanitizeName(name), text)
}
