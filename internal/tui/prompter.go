// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// Prompter mirrors the interface the authenticator consumes.
type Prompter interface {
	Confirm(ctx context.Context, peer models.PeerInfo) (bool, error)
	Notify(ctx context.Context, text string)
}

var (
	_ Prompter = (*TerminalPrompter)(nil)
	_ Prompter = AutoPrompter{}
)

// TerminalPrompter shows one dialog at a time on in/out.
type TerminalPrompter struct {
	mu         sync.Mutex
	in         io.Reader
	out        io.Writer
	deviceName string
}

// NewTerminalPrompter returns a prompter on the process's stdin/stdout.
func NewTerminalPrompter(deviceName string) *TerminalPrompter {
	return NewTerminalPrompterWithIO(os.Stdin, os.Stdout, deviceName)
}

// NewTerminalPrompterWithIO returns a prompter on the given streams.
func NewTerminalPrompterWithIO(in io.Reader, out io.Writer, deviceName string) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, deviceName: deviceName}
}

// Confirm blocks until the owner answers or ctx is done. Closing the dialog
// without an answer returns ErrPromptCancelled.
func (p *TerminalPrompter) Confirm(ctx context.Context, peer models.PeerInfo) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	program := tea.NewProgram(
		newPromptModel(peer, p.deviceName),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("running prompt: %w", err)
	}

	result, ok := final.(promptModel)
	if !ok || !result.answered {
		return false, ErrPromptCancelled
	}
	return result.allowed, nil
}

// Notify prints a one-line notice.
func (p *TerminalPrompter) Notify(_ context.Context, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, noticeStyle.Render("! "+text))
}

// AutoPrompter answers every request with Allow and only logs notices.
// It serves the "allow" and "deny" prompt modes.
type AutoPrompter struct {
	Allow bool
}

func (a AutoPrompter) Confirm(ctx context.Context, peer models.PeerInfo) (bool, error) {
	logger.FromContext(ctx).Info().
		Str("client_id", peer.ClientID).
		Bool("allow", a.Allow).
		Msg("answering pairing request without prompt")
	return a.Allow, nil
}

func (a AutoPrompter) Notify(ctx context.Context, text string) {
	logger.FromContext(ctx).Warn().Msg(text)
}

// New picks the prompter for a prompt mode: "terminal", "allow" or "deny".
func New(cfg config.App) (Prompter, error) {
	switch cfg.PromptMode {
	case config.PromptTerminal:
		return NewTerminalPrompter(cfg.DeviceName), nil
	case config.PromptAllow:
		return AutoPrompter{Allow: true}, nil
	case config.PromptDeny:
		return AutoPrompter{Allow: false}, nil
	default:
		return nil, fmt.Errorf("unknown prompt mode %q", cfg.PromptMode)
	}
}
