package player

import (
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestPlayer_StopKillsImmediately(t *testing.T) {
	requireCommand(t, "sleep")
	p := New("sleep", zerolog.Nop())

	exited, err := p.Start("30")
	require.NoError(t, err)
	assert.True(t, p.Running())

	_, err = p.Start("30")
	assert.ErrorIs(t, err, ErrRunning)

	start := time.Now()
	p.Stop()
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, p.Running())

	select {
	case err := <-exited:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("exit not reported")
	}
}

func TestPlayer_ReportsNaturalExit(t *testing.T) {
	requireCommand(t, "sh")
	p := New("sh -c", zerolog.Nop())

	exited, err := p.Start("exit 3")
	require.NoError(t, err)

	select {
	case err := <-exited:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("exit not reported")
	}
	assert.False(t, p.Running())

	// stopping an idle player is harmless
	p.Stop()
}

func TestPlayer_MissingBinary(t *testing.T) {
	p := New("definitely-not-a-player-binary", zerolog.Nop())
	assert.False(t, p.IsAvailable())

	_, err := p.Start("https://cdn/a.mp4")
	assert.Error(t, err)
	assert.False(t, p.Running())
}
