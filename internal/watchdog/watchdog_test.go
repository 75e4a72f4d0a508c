package watchdog

import (
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFiresOnceAfterTimeout(t *testing.T) {
	var fired atomic.Int32
	w := New(30*time.Millisecond, func() { fired.Add(1) })
	w.Start()

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "must fire exactly once")
	assert.False(t, w.Armed())
}

func TestNotFiredImmediatelyOnStart(t *testing.T) {
	var fired atomic.Int32
	w := New(200*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.True(t, w.Armed())
}

func TestActivityKeepsSessionAlive(t *testing.T) {
	var fired atomic.Int32
	w := New(100*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	defer w.Stop()

	signals := []Signal{PointerMove, KeyPress, Click, Scroll}
	for i := 0; i < 16; i++ {
		time.Sleep(25 * time.Millisecond)
		require.True(t, w.Touch(signals[i%len(signals)]))
	}
	assert.Zero(t, fired.Load(), "activity spaced under the timeout must never expire the session")
}

func TestTouchRestartsCountdown(t *testing.T) {
	var fired atomic.Int32
	w := New(80*time.Millisecond, func() { fired.Add(1) })
	w.Start()

	time.Sleep(50 * time.Millisecond)
	w.Touch(KeyPress)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load(), "countdown should restart from the last touch")

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStopPreventsLateFiring(t *testing.T) {
	var fired atomic.Int32
	w := New(30*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	w.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, w.Armed())
	assert.Zero(t, w.Remaining())
}

func TestTouchIgnoredWhenStopped(t *testing.T) {
	var fired atomic.Int32
	w := New(20*time.Millisecond, func() { fired.Add(1) })

	assert.False(t, w.Touch(KeyPress))
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTouchAfterExpiryDoesNotRearm(t *testing.T) {
	var fired atomic.Int32
	w := New(20*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.False(t, w.Touch(Click))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestStartAfterExpiryRearms(t *testing.T) {
	var fired atomic.Int32
	w := New(20*time.Millisecond, func() { fired.Add(1) })
	w.Start()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	w.Start()
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRemaining(t *testing.T) {
	w := New(time.Minute, nil)
	assert.Zero(t, w.Remaining())

	w.Start()
	defer w.Stop()
	r := w.Remaining()
	assert.Greater(t, r, 59*time.Second)
	assert.LessOrEqual(t, r, time.Minute)
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New(0, nil).Timeout())
	assert.Equal(t, DefaultTimeout, New(-time.Second, nil).Timeout())
	assert.Equal(t, 2*time.Minute, DefaultTimeout)
}

func TestConcurrentTouches(t *testing.T) {
	var fired atomic.Int32
	w := New(50*time.Millisecond, func() { fired.Add(1) })
	w.Start()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				w.Touch(PointerMove)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "concurrent touches must not produce overlapping countdowns")
}

type recorder struct{ msgs []tea.Msg }

func (r *recorder) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestNotifyProgram(t *testing.T) {
	r := &recorder{}
	NotifyProgram(r)()
	require.Len(t, r.msgs, 1)
	assert.IsType(t, ExpiredMsg{}, r.msgs[0])
}

func TestSignalFor(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want Signal
		ok   bool
	}{
		{"key", tea.KeyMsg{Type: tea.KeyEnter}, KeyPress, true},
		{"motion", tea.MouseMsg{Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}, PointerMove, true},
		{"click", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, Click, true},
		{"wheel", tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}, Scroll, true},
		{"resize", tea.WindowSizeMsg{Width: 80, Height: 24}, 0, false},
		{"expired", ExpiredMsg{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SignalFor(tt.msg)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
