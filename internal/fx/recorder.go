package fx

import (
	"fmt"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
)

// Recorder is an in-memory collaborator that keeps every command it
// receives. It stands in for the audio, particle and toast backends in
// tests.
type Recorder struct {
	Commands []string
	Toasts   []string
	Spawns   []bus.ParticleSpawn
	Plays    []bus.AudioPlay
	Busy     bool
	Enabled  bool
}

var (
	_ Audio     = (*Recorder)(nil)
	_ Particles = (*Recorder)(nil)
	_ Presenter = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{Enabled: true}
}

// Attach binds the recorder as every collaborator on b.
func (r *Recorder) Attach(b *bus.Bus) bus.Unsubscribe {
	return join(BindAudio(b, r), BindParticles(b, r), BindPresenter(b, r))
}

func (r *Recorder) Play(key bus.Sound, opts bus.PlayOptions) {
	r.Plays = append(r.Plays, bus.AudioPlay{Key: key, Options: opts})
	r.Commands = append(r.Commands, "play:"+string(key))
}

func (r *Recorder) SetBusy(busy bool) {
	r.Busy = busy
	r.Commands = append(r.Commands, fmt.Sprintf("busy:%t", busy))
}

func (r *Recorder) SetEnabled(enabled bool) {
	r.Enabled = enabled
	r.Commands = append(r.Commands, fmt.Sprintf("enabled:%t", enabled))
}

func (r *Recorder) ResetIdleTimer() {
	r.Commands = append(r.Commands, "idle:reset")
}

func (r *Recorder) UpdateSpatialPosition(x, y float64) {}

func (r *Recorder) InjectEnginePower(velocity float64) {
	r.Commands = append(r.Commands, fmt.Sprintf("power:%.0f", velocity))
}

func (r *Recorder) Spawn(x, y float64, exhaust bool) {
	r.Spawns = append(r.Spawns, bus.ParticleSpawn{X: x, Y: y, Exhaust: exhaust})
	if exhaust {
		r.Commands = append(r.Commands, "spawn:exhaust")
		return
	}
	r.Commands = append(r.Commands, "spawn")
}

func (r *Recorder) Resize(width, height float64) {
	r.Commands = append(r.Commands, fmt.Sprintf("resize:%.0fx%.0f", width, height))
}

func (r *Recorder) ShowToast(message string, timeout time.Duration) {
	r.Toasts = append(r.Toasts, message)
	r.Commands = append(r.Commands, "toast:"+message)
}

// Index returns the position of the first command equal to cmd, or -1.
func (r *Recorder) Index(cmd string) int {
	for i, c := range r.Commands {
		if c == cmd {
			return i
		}
	}
	return -1
}

func (r *Recorder) Count(cmd string) int {
	n := 0
	for _, c := range r.Commands {
		if c == cmd {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.Commands = nil
	r.Toasts = nil
	r.Spawns = nil
	r.Plays = nil
}
