package player

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var ErrRunning = errors.New("player already running")

// Player runs an external media player, one stream at a time.
type Player struct {
	path   string
	args   []string
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New parses command as a program followed by fixed arguments, e.g.
// "mpv --fs". The stream URL is appended when playing.
func New(command string, logger zerolog.Logger) *Player {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{"mpv"}
	}
	path := fields[0]
	if found, err := exec.LookPath(path); err == nil {
		path = found
	}
	return &Player{
		path:   path,
		args:   fields[1:],
		logger: logger,
	}
}

func (p *Player) IsAvailable() bool {
	_, err := exec.LookPath(p.path)
	return err == nil
}

// Start launches the player on url. The returned channel receives the
// process exit error (nil on a clean exit) and is then closed.
func (p *Player) Start(url string) (<-chan error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return nil, ErrRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, p.path, append(append([]string(nil), p.args...), url)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}

	p.logger.Info().Str("player", p.path).Str("url", url).Int("pid", cmd.Process.Pid).Msg("player started")

	done := make(chan struct{})
	exited := make(chan error, 1)
	p.cancel = cancel
	p.done = done

	go func() {
		err := cmd.Wait()
		if ctx.Err() != nil {
			err = nil
		}
		p.mu.Lock()
		p.cancel = nil
		p.done = nil
		p.mu.Unlock()
		cancel()
		close(done)

		if err != nil {
			p.logger.Warn().Err(err).Str("url", url).Msg("player exited with error")
		}
		exited <- err
		close(exited)
	}()

	return exited, nil
}

// Stop kills the running player and waits for it to exit.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info().Msg("player stopped")
}

func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}
