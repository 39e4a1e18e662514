package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

var ErrEmptyCommand = errors.New("subprocess command is empty")

type SubprocessService interface {
	// Start launches the configured command and returns its pid without
	// waiting for it to finish.
	Start(ctx context.Context) (int, error)
}

type ProcessLauncher struct {
	command string
	dir     string
	logger  *slog.Logger

	running sync.WaitGroup
}

func NewProcessLauncher(command, dir string, logger *slog.Logger) *ProcessLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessLauncher{command: command, dir: dir, logger: logger}
}

func (s *ProcessLauncher) Start(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	argv, err := shellwords.Parse(s.command)
	if err != nil {
		return 0, fmt.Errorf("failed to parse command %q: %w", s.command, err)
	}
	if len(argv) == 0 {
		return 0, ErrEmptyCommand
	}

	// not bound to ctx: the process outlives the request that started it
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = s.dir

	out, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout // merge stderr into the same pipe

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	pid := cmd.Process.Pid
	s.logger.Info("subprocess_started", "pid", pid, "command", s.command, "dir", s.dir)

	s.running.Add(1)
	go func() {
		defer s.running.Done()

		scanner := bufio.NewScanner(out)
		for scanner.Scan() {
			s.logger.Info("subprocess_output", "pid", pid, "line", scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			s.logger.Warn("subprocess_output_failed", "pid", pid, "error", err)
		}

		err := cmd.Wait()
		exitCode := cmd.ProcessState.ExitCode()
		if err != nil {
			s.logger.Warn("subprocess_exited", "pid", pid, "exit_code", exitCode, "error", err)
			return
		}
		s.logger.Info("subprocess_exited", "pid", pid, "exit_code", exitCode)
	}()

	return pid, nil
}

// Wait blocks until every started process has been reaped.
func (s *ProcessLauncher) Wait() {
	s.running.Wait()
}
