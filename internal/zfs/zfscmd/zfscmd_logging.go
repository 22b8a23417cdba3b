package zfscmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"github.com/bsdkit/jailconf/internal/logging"
)

// Implementation Note:
//
// Pre-events logged with debug
// Post-event without error logged with debug
// Post-events with error logged with error
// (Not all errors we observe at this layer are actual errors in higher-level
// layers)

func (c *Cmd) log() *slog.Logger { return getLogger(c.ctx) }

func (c *Cmd) logWithCmd() *slog.Logger {
	return c.log().With(slog.String("cmd", c.String()))
}

func startPreLogging(c *Cmd) {
	c.logWithCmd().Debug("starting command")
}

func startPostLogging(c *Cmd, err error) {
	if err == nil {
		c.log().Debug("\"" + c.String() + "\"")
	} else {
		logging.WithError(c.logWithCmd(), err).Error("cannot start command")
	}
}

func waitPreLogging(c *Cmd) {
	c.logWithCmd().Debug("start waiting")
}

func waitPostLogging(c *Cmd, err error, debug bool) {
	log := c.logWithCmd().With(
		slog.Float64("total_time_s", c.usage.totalSecs),
		slog.Float64("systemtime_s", c.usage.systemSecs),
		slog.Float64("usertime_s", c.usage.userSecs))

	if err == nil {
		log.Debug("command exited without error")
		return
	}
	log = logging.WithError(log, err)

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		log = log.With(slog.Int("status", exitError.ExitCode()))
	}

	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	log.Log(context.Background(), level, "command exited with error")

	if len(c.stderrOutput) == 0 {
		return
	}

	s := bufio.NewScanner(bytes.NewReader(c.stderrOutput))
	for s.Scan() {
		c.log().Log(context.Background(), level, "output: "+s.Text())
	}
}
