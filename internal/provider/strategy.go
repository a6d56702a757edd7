package provider

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Mode selects which backend the process uses.
type Mode string

// Supported modes.
const (
	ModeAuto      Mode = "auto"
	ModeHF        Mode = "hf"
	ModeOpenAI    Mode = "openai"
	ModeAnthropic Mode = "anthropic"
	ModeLocal     Mode = "local"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeAuto, ModeHF, ModeOpenAI, ModeAnthropic, ModeLocal}

// ParseMode normalizes s into a Mode. The empty string means auto.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeAuto, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want one of auto, hf, openai, anthropic, local)", s)
}

// Candidate is a backend that can be constructed on demand.
type Candidate struct {
	Name string
	New  func() (Summarizer, error)
}

func (c Candidate) build() (Summarizer, error) {
	if c.New == nil {
		return nil, fmt.Errorf("%w: %s: no constructor", ErrInit, c.Name)
	}
	s, err := c.New()
	if err != nil {
		if !errors.Is(err, ErrInit) {
			err = fmt.Errorf("%w: %w", ErrInit, err)
		}
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	return s, nil
}

// Select builds the backend for mode. A named mode builds exactly that
// backend. Auto tries remotes in order and falls back to local. When nothing
// can be built the error wraps ErrNoProvider joined with every cause.
func Select(mode Mode, remotes []Candidate, local Candidate, logger *slog.Logger) (Summarizer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if mode != ModeAuto && mode != "" {
		all := append(append([]Candidate(nil), remotes...), local)
		for _, c := range all {
			if c.Name != string(mode) {
				continue
			}
			s, err := c.build()
			if err != nil {
				return nil, errors.Join(ErrNoProvider, err)
			}
			logger.Info("backend selected", "backend", s.Name(), "model", s.ModelName())
			return s, nil
		}
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNoProvider, mode)
	}

	var causes []error
	for _, c := range append(append([]Candidate(nil), remotes...), local) {
		s, err := c.build()
		if err != nil {
			logger.Info("backend unavailable, trying next", "backend", c.Name, "error", err)
			causes = append(causes, err)
			continue
		}
		logger.Info("backend selected", "backend", s.Name(), "model", s.ModelName(), "mode", string(ModeAuto))
		return s, nil
	}
	return nil, errors.Join(append([]error{ErrNoProvider}, causes...)...)
}
