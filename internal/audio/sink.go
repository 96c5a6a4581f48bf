package audio

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

// Sink hands rendered clips to an output. Play must not block on playback.
type Sink interface {
	// Available reports whether Play can produce sound at all.
	Available() bool
	// Play starts playback of clip. name identifies the clip for caching and logs;
	// kind tells one-shot cues from background loop steps.
	Play(name string, kind CueKind, clip Clip)
}

// Limits on simultaneous player processes. Loop steps overlap with the tails of earlier
// steps and have their own budget, so a busy loop never crowds out a phase cue.
const (
	maxConcurrentCues      = 4
	maxConcurrentLoopSteps = 6
)

// PlayerSink plays clips through an OS-native command line player.
type PlayerSink struct {
	logger     *log.Logger
	command   string
	args      []string
	cues      atomic.Int32
	loopSteps atomic.Int32

	// Every clip is written once into dir and replayed from there.
	mu    sync.Mutex
	dir   string
	files map[string]string
}

// NewPlayerSink detects a player for the current platform. When none is found the
// sink reports itself unavailable and Play is a no-op.
func NewPlayerSink(logger *log.Logger) *PlayerSink {
	if logger == nil {
		panic("PlayerSink: logger cannot be nil")
	}
	command, args := detectPlayer()
	logger.Printf("PlayerSink: platform=%s player=%q available=%t", runtime.GOOS, command, command != "")
	return &PlayerSink{
		logger:  logger,
		command: command,
		args:    args,
		files:   make(map[string]string),
	}
}

// Available reports whether a player command was detected.
func (s *PlayerSink) Available() bool {
	return s.command != ""
}

// Play writes clip to its cache file on first use and runs the player in the background.
// Clips beyond the concurrency limit of their kind are dropped.
func (s *PlayerSink) Play(name string, kind CueKind, clip Clip) {
	if !s.Available() || len(clip.Samples) == 0 {
		return
	}

	path, err := s.clipFile(name, clip)
	if err != nil {
		s.logger.Printf("PlayerSink: cannot stage clip %s: %v", name, err)
		return
	}

	release, ok := s.reserve(kind)
	if !ok {
		return
	}

	go func() {
		defer release()
		cmd := exec.Command(s.command, s.buildArgs(path)...) //nolint:gosec // command comes from detectPlayer
		if err := cmd.Run(); err != nil {
			s.logger.Printf("PlayerSink: playback of %s failed: %v", name, err)
		}
	}()
}

// reserve takes a playback slot for kind. ok is false when all slots are busy.
func (s *PlayerSink) reserve(kind CueKind) (release func(), ok bool) {
	counter, limit := &s.cues, int32(maxConcurrentCues)
	if kind == CueLoopStep {
		counter, limit = &s.loopSteps, int32(maxConcurrentLoopSteps)
	}
	if counter.Add(1) > limit {
		counter.Add(-1)
		return nil, false
	}
	return func() { counter.Add(-1) }, true
}

// Close removes the staged clip files.
func (s *PlayerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	s.files = make(map[string]string)
	return err
}

func (s *PlayerSink) clipFile(name string, clip Clip) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path, ok := s.files[name]; ok {
		return path, nil
	}
	if s.dir == "" {
		dir, err := os.MkdirTemp("", "tabata-sounds-*")
		if err != nil {
			return "", fmt.Errorf("create clip directory: %w", err)
		}
		s.dir = dir
	}
	path := filepath.Join(s.dir, name+".wav")
	if err := os.WriteFile(path, EncodeWAV(clip), 0o600); err != nil {
		return "", fmt.Errorf("write clip: %w", err)
	}
	s.files[name] = path
	return path, nil
}

// buildArgs returns a fresh argument slice for one invocation.
func (s *PlayerSink) buildArgs(path string) []string {
	if runtime.GOOS == "windows" {
		return []string{"-c", powerShellPlayCommand(path)}
	}
	args := make([]string, len(s.args)+1)
	copy(args, s.args)
	args[len(args)-1] = path
	return args
}

// powerShellPlayCommand plays path synchronously. Quotes in path are doubled, which is
// how a single-quoted PowerShell string escapes them.
func powerShellPlayCommand(path string) string {
	return fmt.Sprintf("(New-Object System.Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(path, "'", "''"))
}

// detectPlayer returns the player command and base arguments, or "" if none exists.
func detectPlayer() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		if path, err := exec.LookPath("afplay"); err == nil {
			return path, nil
		}
	case "linux":
		if path, err := exec.LookPath("paplay"); err == nil {
			return path, nil
		}
		if path, err := exec.LookPath("aplay"); err == nil {
			return path, []string{"-q"}
		}
	case "windows":
		if path, err := exec.LookPath("powershell.exe"); err == nil {
			return path, nil
		}
	}
	return "", nil
}
