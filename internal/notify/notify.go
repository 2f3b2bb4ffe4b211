// Package notify describes the user-facing notifications emitted for
// validation failures and operation errors.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// Severity controls how a notification is presented.
type Severity string

const (
	SeverityNormal      Severity = "normal"
	SeverityDestructive Severity = "destructive"
)

// Notification is a fire-and-forget message shown to the user.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Messenger is implemented by errors that carry user-facing text.
type Messenger interface {
	error
	Message() (title, description string)
}

// FromError builds a destructive notification for err. Errors carrying their
// own text keep it; anything else gets the generic fallback.
func FromError(err error, fallbackTitle, fallbackDescription string) *Notification {
	if err == nil {
		return nil
	}
	var m Messenger
	if errors.As(err, &m) {
		title, description := m.Message()
		return &Notification{Title: title, Description: description, Severity: SeverityDestructive}
	}
	return &Notification{Title: fallbackTitle, Description: fallbackDescription, Severity: SeverityDestructive}
}

// Emit logs the notification and returns it, so callers can attach it to a
// response in one step.
func Emit(ctx context.Context, n *Notification) *Notification {
	if n == nil {
		return nil
	}
	level := slog.LevelInfo
	if n.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "Notification emitted",
		"title", n.Title,
		"description", n.Description,
		"severity", n.Severity,
	)
	return n
}
