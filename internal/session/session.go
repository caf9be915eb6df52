// Package session holds the live state of one chat widget conversation:
// the message log, the input buffer, the loading flag, the UI toggles,
// and the send pipeline that relays user messages to the remote backend.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/moloudamini/chatbot/internal/export"
	"github.com/moloudamini/chatbot/internal/model/chat"
)

// FallbackText replaces the reply whenever an exchange fails.
const FallbackText = "Sorry, something went wrong."

// DefaultGreeting seeds the log when no greeting is configured.
const DefaultGreeting = "Hello! How can I assist you today?"

// ErrExchangeInFlight is returned by Send while a previous exchange is
// still awaiting its reply. The log stays strictly ordered: one user
// message, then its bot message, before the next send is accepted.
var ErrExchangeInFlight = errors.New("an exchange is already in flight")

// Responder is the remote chat backend seen from the session: submit
// text, receive reply text.
type Responder interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Options tune a session at construction time.
type Options struct {
	// Greeting seeds the log with an initial bot message. Empty means
	// DefaultGreeting; the log always starts with one bot message.
	Greeting string
	// ReplyDelayFloor and ReplyDelayPerChar shape the simulated thinking
	// delay before a successful reply is shown:
	// max(floor, chars(reply) * perChar).
	ReplyDelayFloor   time.Duration
	ReplyDelayPerChar time.Duration
	// Now overrides the clock, for deterministic tests. Defaults to time.Now.
	Now func() time.Time
}

// Session owns one conversation. All state lives behind a single mutex;
// snapshots hand out copies only. Constructed once per active widget,
// torn down with Close when the widget unmounts.
type Session struct {
	backend   Responder
	delayFlr  time.Duration
	delayChar time.Duration
	now       func() time.Time

	mu          sync.Mutex
	messages    []chat.Message
	input       string
	loading     bool
	chatOpen    bool
	darkMode    bool
	menuOpen    bool
	emojiPicker bool
	pending     *scheduledReply
	watchers    map[chan struct{}]struct{}
	closed      bool
}

// New builds a session backed by the given responder and seeds the log
// with the greeting.
func New(backend Responder, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}

	s := &Session{
		backend:   backend,
		delayFlr:  opts.ReplyDelayFloor,
		delayChar: opts.ReplyDelayPerChar,
		now:       opts.Now,
		watchers:  make(map[chan struct{}]struct{}),
	}

	s.messages = append(s.messages, chat.Message{
		ID:        uuid.NewString(),
		Sender:    chat.SenderBot,
		Text:      opts.Greeting,
		CreatedAt: s.now(),
	})

	return s
}

// Snapshot returns a copy of the full session state.
func (s *Session) Snapshot() chat.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]chat.Message, len(s.messages))
	copy(messages, s.messages)

	return chat.Snapshot{
		Messages:        messages,
		Input:           s.input,
		IsLoading:       s.loading,
		ChatOpen:        s.chatOpen,
		DarkMode:        s.darkMode,
		MenuOpen:        s.menuOpen,
		ShowEmojiPicker: s.emojiPicker,
	}
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Loading reports whether an exchange is awaiting its reply.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Input returns the current input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the input buffer (user typing).
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
	s.notify()
}

// AddEmoji appends the emoji text verbatim to the input buffer and
// closes the picker.
func (s *Session) AddEmoji(native string) {
	s.mu.Lock()
	s.input += native
	s.emojiPicker = false
	s.mu.Unlock()
	s.notify()
}

// SetChatOpen sets the panel visibility.
func (s *Session) SetChatOpen(open bool) { s.setToggle(&s.chatOpen, open) }

// SetDarkMode sets the theme flag.
func (s *Session) SetDarkMode(on bool) { s.setToggle(&s.darkMode, on) }

// SetMenuOpen sets the menu visibility.
func (s *Session) SetMenuOpen(open bool) { s.setToggle(&s.menuOpen, open) }

// SetEmojiPickerOpen sets the emoji picker visibility.
func (s *Session) SetEmojiPickerOpen(open bool) { s.setToggle(&s.emojiPicker, open) }

func (s *Session) setToggle(field *bool, value bool) {
	s.mu.Lock()
	*field = value
	s.mu.Unlock()
	s.notify()
}

// Send runs one exchange: append the buffered input as a user message,
// clear the buffer, and relay the text to the backend. The reply (or the
// fallback on failure) is appended asynchronously. A trimmed-empty
// buffer is a silent no-op. While a previous exchange is outstanding,
// Send returns ErrExchangeInFlight and changes nothing.
//
// ctx covers the backend request only; it should outlive the caller
// (an exchange, once issued, always settles).
func (s *Session) Send(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrExchangeInFlight
	}

	text := s.input
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return nil
	}

	s.appendLocked(chat.SenderUser, text)
	s.input = ""
	s.loading = true
	s.mu.Unlock()
	s.notify()

	go s.exchange(ctx, text)
	return nil
}

// exchange runs the asynchronous half of Send.
func (s *Session) exchange(ctx context.Context, text string) {
	reply, err := s.backend.Ask(ctx, text)
	if err != nil {
		// All failure modes collapse into the fallback message,
		// appended without the thinking delay.
		log.Printf("[session] exchange failed: %v", err)
		s.settle(FallbackText)
		return
	}

	task := schedule(s.replyDelay(reply), func() {
		s.settle(reply)
	})

	s.mu.Lock()
	s.pending = task
	closed := s.closed
	s.mu.Unlock()
	if closed {
		task.Cancel()
	}
}

// settle appends the bot message and clears the loading flag in one
// critical section, so no observer sees one without the other.
func (s *Session) settle(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.appendLocked(chat.SenderBot, text)
	s.loading = false
	s.pending = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Session) appendLocked(sender chat.Sender, text string) {
	s.messages = append(s.messages, chat.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: s.now(),
	})
}

// replyDelay models perceived thinking time: proportional to the reply
// length with a fixed floor.
func (s *Session) replyDelay(reply string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(reply)) * s.delayChar
	if d < s.delayFlr {
		d = s.delayFlr
	}
	return d
}

// Export renders the transcript and its filename. Delivery of the pair
// is the caller's concern.
func (s *Session) Export() (content, filename string) {
	now := s.now()
	return export.Transcript(s.Messages(), now), export.Filename(now)
}

// Watch registers a change listener. The channel receives a signal after
// every state mutation (coalesced, never blocking). The returned func
// unregisters it.
func (s *Session) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close tears the session down on widget unmount: a pending reply timer
// is cancelled and watchers are released. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.watchers = make(map[chan struct{}]struct{})
	s.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
}
