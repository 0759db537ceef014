// Package status maintains the single progress message a request shows
// to the user while it is being worked on.
package status

import (
	"go.uber.org/zap"
)

// MessageRef identifies a sent message within its chat.
type MessageRef int

// Messenger is the slice of the messaging transport the reporter needs.
type Messenger interface {
	SendMessage(chatID int64, text string) (MessageRef, error)
	EditMessage(chatID int64, ref MessageRef, text string) error
	DeleteMessage(chatID int64, ref MessageRef) error
}

// Reporter owns exactly one outbound status message per request and
// edits it in place until the request resolves. Transport hiccups while
// reporting are logged and swallowed: progress text must never fail a
// delivery that is otherwise working.
type Reporter struct {
	m      Messenger
	log    *zap.Logger
	chatID int64
	ref    MessageRef
	active bool
}

func NewReporter(m Messenger, log *zap.Logger, chatID int64) *Reporter {
	return &Reporter{m: m, log: log, chatID: chatID}
}

// Begin sends the initial status message.
func (r *Reporter) Begin(text string) {
	ref, err := r.m.SendMessage(r.chatID, text)
	if err != nil {
		r.log.Warn("send status message", zap.Error(err))
		return
	}
	r.ref = ref
	r.active = true
}

// Update edits the status message to the next phase.
func (r *Reporter) Update(text string) {
	if !r.active {
		return
	}
	if err := r.m.EditMessage(r.chatID, r.ref, text); err != nil {
		r.log.Warn("edit status message", zap.Error(err))
	}
}

// Done deletes the status message; the delivered video speaks for itself.
func (r *Reporter) Done() {
	if !r.active {
		return
	}
	if err := r.m.DeleteMessage(r.chatID, r.ref); err != nil {
		r.log.Warn("delete status message", zap.Error(err))
	}
	r.active = false
}

// Fail leaves the status message visible with the final error text. If
// the initial send never went through it falls back to a fresh message
// so the user still learns what happened.
func (r *Reporter) Fail(text string) {
	if !r.active {
		if _, err := r.m.SendMessage(r.chatID, text); err != nil {
			r.log.Warn("send failure message", zap.Error(err))
		}
		return
	}
	if err := r.m.EditMessage(r.chatID, r.ref, text); err != nil {
		r.log.Warn("edit status message", zap.Error(err))
	}
	r.active = false
}

// Active reports whether a status message is currently visible.
func (r *Reporter) Active() bool {
	return r.active
}
