// Package zfscmd provides a wrapper around package os/exec.
// Functionality provided by the wrapper:
// - logging start and end of command execution
// - prometheus metrics of runtimes
package zfscmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

func CommandContext(ctx context.Context, name string, args ...string) *Cmd {
	return New(ctx).WithCommand(name, args)
}

func New(ctx context.Context) *Cmd {
	return &Cmd{ctx: ctx, logError: true}
}

type Cmd struct {
	cmd                                      *exec.Cmd
	ctx                                      context.Context
	mtx                                      sync.Mutex
	startedAt, waitStartedAt, waitReturnedAt time.Time

	usage        usage
	stderrOutput []byte
	logError     bool
}

type usage struct {
	totalSecs, systemSecs, userSecs float64
}

func (c *Cmd) WithCommand(name string, args []string) *Cmd {
	c.cmd = exec.CommandContext(c.ctx, name, args...)
	return c
}

func (c *Cmd) WithLogError(v bool) *Cmd {
	c.logError = v
	return c
}

func (c *Cmd) WithStderrOutput(b []byte) *Cmd {
	c.stderrOutput = b
	return c
}

// err.(*exec.ExitError).Stderr will NOT be set
func (c *Cmd) CombinedOutput() (o []byte, err error) {
	c.startPre()
	c.startPost(nil)
	c.waitPre()
	o, err = c.cmd.CombinedOutput()
	c.stderrOutput = o
	c.waitPost(err)
	return
}

// err.(*exec.ExitError).Stderr will be set
func (c *Cmd) Output() (o []byte, err error) {
	c.startPre()
	c.startPost(nil)
	c.waitPre()
	o, err = c.cmd.Output()
	c.waitPost(err)
	return
}

func (c *Cmd) String() string {
	return strings.Join(c.cmd.Args, " ")
}

// Start the command.
//
// If this method returns an error, the Cmd instance is invalid. Start must not
// be called repeatedly.
func (c *Cmd) Start() error {
	c.startPre()
	err := c.cmd.Start()
	c.startPost(err)
	return err
}

// Blocking wait for the process to exit.
//
// Only call this method after a successful call to .Start().
func (c *Cmd) Wait() error {
	c.waitPre()
	err := c.cmd.Wait()
	if err != nil && errors.Is(context.Cause(c.ctx), context.DeadlineExceeded) {
		err = errors.Join(err, context.Cause(c.ctx))
	}
	c.waitPost(err)
	return err
}

func (c *Cmd) startPre() {
	startPreLogging(c)
}

func (c *Cmd) startPost(err error) {
	c.startedAt = time.Now()
	startPostLogging(c, err)
}

func (c *Cmd) waitPre() {
	now := time.Now()

	c.mtx.Lock()
	// ignore duplicate waits
	if !c.waitStartedAt.IsZero() {
		c.mtx.Unlock()
		return
	}
	c.waitStartedAt = now
	c.mtx.Unlock()

	waitPreLogging(c)
}

func (c *Cmd) waitPost(err error) {
	now := time.Now()

	c.mtx.Lock()
	// ignore duplicate waits
	if !c.waitReturnedAt.IsZero() {
		c.mtx.Unlock()
		return
	}
	c.waitReturnedAt = now
	c.mtx.Unlock()

	var s *os.ProcessState
	if err == nil {
		s = c.cmd.ProcessState
	} else {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			s = exitError.ProcessState
			if c.stderrOutput == nil {
				c.stderrOutput = exitError.Stderr
			}
		}
	}

	if s == nil {
		c.usage = usage{
			totalSecs:  c.Runtime().Seconds(),
			systemSecs: -1,
			userSecs:   -1,
		}
	} else {
		c.usage = usage{
			totalSecs:  c.Runtime().Seconds(),
			systemSecs: s.SystemTime().Seconds(),
			userSecs:   s.UserTime().Seconds(),
		}
	}

	if err == nil || c.logError {
		c.LogError(err, false)
	}
	waitPostPrometheus(c, c.usage)
}

func (c *Cmd) LogError(err error, debug bool) {
	waitPostLogging(c, err, debug)
}

// returns 0 if the command did not yet finish
func (c *Cmd) Runtime() time.Duration {
	if c.waitReturnedAt.IsZero() {
		return 0
	}
	return c.waitReturnedAt.Sub(c.startedAt)
}
