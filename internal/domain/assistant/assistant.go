// Package assistant implements the storefront chat helper. Replies are canned
// and keyword-matched; a typing delay makes them feel conversational and can
// be cancelled through the caller's context.
package assistant

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Recommendation points at a package suggested in a reply.
type Recommendation struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Rating float64         `json:"rating"`
	Slug   string          `json:"slug"`
}

// Message is one chat entry.
type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Snapshot is a consistent copy of a conversation.
type Snapshot struct {
	Messages         []Message
	Typing           bool
	SelectedCategory string
	Recommendations  []Recommendation
}

// Conversation is one visitor's chat. It is safe for concurrent use; a reply
// in flight does not block reads.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	// pending counts replies in flight; the assistant is typing while any
	// is pending.
	pending         int
	category        string
	recommendations []Recommendation
}

// NewConversation starts a chat with the welcome message.
func NewConversation(now time.Time) *Conversation {
	c := &Conversation{}
	c.reset(now)
	return c
}

// Snapshot returns a copy of the conversation state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Messages:         slices.Clone(c.messages),
		Typing:           c.pending > 0,
		SelectedCategory: c.category,
		Recommendations:  slices.Clone(c.recommendations),
	}
}

// Reset clears the chat back to the welcome message. Replies already in
// flight still arrive.
func (c *Conversation) Reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(now)
}

func (c *Conversation) reset(now time.Time) {
	c.messages = []Message{{
		ID:        "welcome",
		Role:      RoleAI,
		Content:   welcomeMessage,
		Timestamp: now,
	}}
	c.category = ""
	c.recommendations = nil
}

// Busy reports whether a reply is in flight.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

func (c *Conversation) begin(msg Message, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	c.pending++
	if category != "" {
		c.category = category
	}
}

func (c *Conversation) finish(reply *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	if reply == nil {
		return
	}
	c.messages = append(c.messages, *reply)
	if reply.Recommendations != nil {
		c.recommendations = reply.Recommendations
	}
}

// Delay is a base duration plus up to Jitter of random extra time.
type Delay struct {
	Base   time.Duration
	Jitter time.Duration
}

func (d Delay) pick() time.Duration {
	if d.Jitter <= 0 {
		return d.Base
	}
	return d.Base + rand.N(d.Jitter)
}

// Options tunes reply timing.
type Options struct {
	Message  Delay
	Category Delay
}

// DefaultOptions returns the storefront timing: 1.2-2.0s for free text and
// 1.0-1.5s for category picks.
func DefaultOptions() Options {
	return Options{
		Message:  Delay{Base: 1200 * time.Millisecond, Jitter: 800 * time.Millisecond},
		Category: Delay{Base: 1000 * time.Millisecond, Jitter: 500 * time.Millisecond},
	}
}

// Assistant produces replies for conversations.
type Assistant struct {
	opts Options
	now  func() time.Time
}

// New creates an Assistant.
func New(opts Options) *Assistant {
	return &Assistant{opts: opts, now: time.Now}
}

// NewConversation starts a conversation stamped with the assistant's clock.
func (a *Assistant) NewConversation() *Conversation {
	return NewConversation(a.now())
}

// Send posts the visitor's text and waits for the reply. If ctx ends first,
// the user message stays and no reply is added.
func (a *Assistant) Send(ctx context.Context, c *Conversation, text string) (Message, error) {
	c.begin(a.message(RoleUser, text, nil), "")
	return a.reply(ctx, c, a.opts.Message, func() Message {
		return a.message(RoleAI, Reply(text), nil)
	})
}

// SelectCategory posts a category pick and waits for the recommendations.
// Unknown categories get the "other" picks.
func (a *Assistant) SelectCategory(ctx context.Context, c *Conversation, category string) (Message, error) {
	label, known := categoryLabels[category]
	if !known {
		label = category
	}
	c.begin(a.message(RoleUser, "I'm interested in "+label, nil), category)

	return a.reply(ctx, c, a.opts.Category, func() Message {
		recs, ok := recommendations[category]
		if !ok {
			recs = recommendations["other"]
		}
		who := label
		if !known {
			who = "you"
		}
		content := "Here are my top picks for " + who + "! 🎉 These are our highest-rated ones 👇"
		return a.message(RoleAI, content, slices.Clone(recs))
	})
}

func (a *Assistant) reply(ctx context.Context, c *Conversation, d Delay, build func() Message) (Message, error) {
	t := time.NewTimer(d.pick())
	defer t.Stop()

	select {
	case <-ctx.Done():
		c.finish(nil)
		return Message{}, ctx.Err()
	case <-t.C:
	}

	msg := build()
	c.finish(&msg)
	return msg, nil
}

func (a *Assistant) message(role Role, content string, recs []Recommendation) Message {
	return Message{
		ID:              string(role) + "-" + uuid.NewString(),
		Role:            role,
		Content:         content,
		Timestamp:       a.now(),
		Recommendations: recs,
	}
}

// Reply picks the canned answer for free text by keyword.
func Reply(text string) string {
	lower := strings.ToLower(text)
	for _, r := range replies {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.text
			}
		}
	}
	return fallbackReply
}
