package driven

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"slices"
)

// ExecPlayer starts an external media player for every stream.
// It implements the driven.Player port.
type ExecPlayer struct {
	command string
	args    []string
	logger  *slog.Logger

	// start is replaced in tests.
	start func(cmd *exec.Cmd) error
}

// NewExecPlayer creates a player that runs command with args followed by the stream URL.
func NewExecPlayer(command string, args []string, logger *slog.Logger) (*ExecPlayer, error) {
	if command == "" {
		return nil, errors.New("player command cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ExecPlayer{
		command: command,
		args:    slices.Clone(args),
		logger:  logger,
		start:   startDetached,
	}, nil
}

// Play launches the player and returns as soon as the process has started.
// The process is not tied to ctx, so it keeps running after the request ends.
func (p *ExecPlayer) Play(ctx context.Context, streamURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(p.command, append(slices.Clone(p.args), streamURL)...)
	if err := p.start(cmd); err != nil {
		return fmt.Errorf("starting player %s: %w", p.command, err)
	}

	p.logger.Info("player started", "command", p.command, "url", streamURL)
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// LogPlayer only records the stream it was asked to play.
// It is used when no player command is configured; clients then follow /watch links.
type LogPlayer struct {
	logger *slog.Logger
}

// NewLogPlayer creates a LogPlayer.
func NewLogPlayer(logger *slog.Logger) *LogPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPlayer{logger: logger}
}

// Play logs streamURL.
func (p *LogPlayer) Play(ctx context.Context, streamURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info("playback requested", "url", streamURL)
	return nil
}
