// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jeranaias/chatline/internal/model"
)

// FallbackMessage is shown in place of an assistant reply when the exchange
// fails for any reason.
const FallbackMessage = "Sorry, an error occurred while connecting to the server. Please try again."

// ErrEmptyInput is returned when the user input is blank. Nothing is sent.
var ErrEmptyInput = errors.New("message is empty")

// Sender sends one message to a backend. *Client implements it.
type Sender interface {
	Send(ctx context.Context, message, threadID string) (*Reply, error)
}

// Outcome is the result of one exchange.
type Outcome struct {
	// Text is the assistant text, or the fallback message when Err is set.
	Text string
	// ThreadID is the thread ID returned by the backend, if any.
	ThreadID string
	// Err is the underlying failure. The user only ever sees the fallback.
	Err error
	// Duration is the time spent waiting for the backend.
	Duration time.Duration
}

// Failed reports whether the fallback message was substituted.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Apply records the outcome in conv: the thread ID is adopted if conv has
// none yet, then the reply (or the fallback, flagged as an error) is
// appended.
func (o Outcome) Apply(conv *model.Conversation) *model.Message {
	if o.Failed() {
		return conv.AddErrorMessage(o.Text)
	}
	conv.SetThreadID(o.ThreadID)
	return conv.AddAssistantMessage(o.Text)
}

// Exchanger runs message exchanges against a Sender.
type Exchanger struct {
	sender   Sender
	fallback string
	logger   *log.Logger
}

// NewExchanger creates an Exchanger that uses FallbackMessage on failure.
func NewExchanger(sender Sender) *Exchanger {
	return &Exchanger{
		sender:   sender,
		fallback: FallbackMessage,
		logger:   log.Default(),
	}
}

// WithFallback overrides the message shown when an exchange fails.
func (e *Exchanger) WithFallback(msg string) *Exchanger {
	if strings.TrimSpace(msg) != "" {
		e.fallback = msg
	}
	return e
}

// WithLogger sets the logger used to record failures.
func (e *Exchanger) WithLogger(logger *log.Logger) *Exchanger {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Fallback returns the configured fallback message.
func (e *Exchanger) Fallback() string {
	return e.fallback
}

// Do sends text and returns the outcome without touching any conversation.
// It never returns a bare error: failures are logged and reported through
// Outcome.Err with the fallback message as Text.
func (e *Exchanger) Do(ctx context.Context, text, threadID string) Outcome {
	start := time.Now()
	reply, err := e.sender.Send(ctx, text, threadID)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Printf("EXCHANGE_FAILED | thread=%s duration=%v err=%v", logThread(threadID), elapsed.Round(time.Millisecond), err)
		return Outcome{Text: e.fallback, Err: err, Duration: elapsed}
	}
	return Outcome{Text: reply.Text(), ThreadID: reply.ThreadID, Duration: elapsed}
}

// Exchange appends text as a user message, sends it, and applies the
// outcome to conv. Blank input returns ErrEmptyInput and leaves conv
// unchanged.
func (e *Exchanger) Exchange(ctx context.Context, conv *model.Conversation, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyInput
	}
	conv.AddUserMessage(text)
	out := e.Do(ctx, text, conv.ThreadID)
	out.Apply(conv)
	return out, nil
}

func logThread(id string) string {
	if id == "" {
		return "new"
	}
	return id
}
