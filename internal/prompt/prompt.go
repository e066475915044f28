// Package prompt provides the interactive surfaces used to collect tokens, repository names and issue text.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Input describes a single-line text prompt
type Input struct {
	Title       string
	Placeholder string
	Password    bool
	// Validate, when set, is shown inline and blocks submission until it returns nil
	Validate func(string) error
	// Message is shown above the field, e.g. why a previous answer was rejected
	Message string
}

// Prompter asks the user for input. A false ok means the user cancelled; cancelling is not an error
type Prompter interface {
	Ask(ctx context.Context, in Input) (value string, ok bool, err error)
	Choose(ctx context.Context, message string, options ...string) (choice string, ok bool, err error)
}

// Form implements Prompter with huh forms
type Form struct {
	// Accessible switches huh to plain line-based prompts, for screen readers and dumb terminals
	Accessible bool
}

func (f Form) run(ctx context.Context, fields ...huh.Field) (bool, error) {
	form := huh.NewForm(huh.NewGroup(fields...)).WithAccessible(f.Accessible)
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}

func (f Form) Ask(ctx context.Context, in Input) (string, bool, error) {
	var value string

	field := huh.NewInput().
		Title(in.Title).
		Placeholder(in.Placeholder).
		Value(&value)
	if in.Message != "" {
		field = field.Description(in.Message)
	}
	if in.Password {
		field = field.EchoMode(huh.EchoModePassword)
	}
	if in.Validate != nil {
		field = field.Validate(in.Validate)
	}

	ok, err := f.run(ctx, field)
	if err != nil || !ok {
		return "", false, err
	}
	return value, true, nil
}

func (f Form) Choose(ctx context.Context, message string, options ...string) (string, bool, error) {
	var choice string

	ok, err := f.run(ctx, huh.NewSelect[string]().
		Title(message).
		Options(huh.NewOptions(options...)...).
		Value(&choice),
	)
	if err != nil || !ok {
		return "", false, err
	}
	return choice, true, nil
}

// Scripted is a Prompter that replays canned answers. It is useful for non-interactive runs and tests
type Scripted struct {
	Answers []Answer
	// Asked records every Input seen by Ask, in order
	Asked []Input
	// Choices records every message seen by Choose, in order
	Choices []string
}

// Answer is one canned response. Cancel simulates the user dismissing the prompt
type Answer struct {
	Value  string
	Cancel bool
}

func (s *Scripted) next() (Answer, bool) {
	if len(s.Answers) == 0 {
		return Answer{}, false
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return a, true
}

func (s *Scripted) Ask(_ context.Context, in Input) (string, bool, error) {
	s.Asked = append(s.Asked, in)
	a, ok := s.next()
	if !ok || a.Cancel {
		return "", false, nil
	}
	return a.Value, true, nil
}

func (s *Scripted) Choose(_ context.Context, message string, options ...string) (string, bool, error) {
	s.Choices = append(s.Choices, message)
	a, ok := s.next()
	if !ok || a.Cancel {
		return "", false, nil
	}
	return a.Value, true, nil
}
