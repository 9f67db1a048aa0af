package midi_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/testdrv"
	"go.uber.org/zap/zaptest"

	"github.com/PixPMusic/gopher-cc/internal/midi"
)

func TestGomidiDriverLoopback(t *testing.T) {
	td := testdrv.New("loopback")
	drv := midi.NewGomidiDriver(td)
	defer drv.Close()

	ins, err := td.Ins()
	require.NoError(t, err)
	require.NotEmpty(t, ins)

	var (
		mu  sync.Mutex
		got [][]byte
	)
	stop, err := gomidi.ListenTo(ins[0], func(msg gomidi.Message, _ int32) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, append([]byte(nil), []byte(msg)...))
	})
	require.NoError(t, err)
	defer stop()

	m := midi.NewManager(drv, zaptest.NewLogger(t), midi.DefaultOptions())
	devices, err := m.ListOutputDevices(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, devices)
	assert.True(t, devices[0].Output)

	out, err := m.Open(context.Background(), devices[0].ID)
	require.NoError(t, err)
	require.NoError(t, m.SendControlChange(context.Background(), out, 4, 43, 100))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []byte{0xB4, 43, 100}, got[0])
}

func TestGomidiDriverRejectsUnknownPort(t *testing.T) {
	drv := midi.NewGomidiDriver(testdrv.New("loopback"))

	_, err := drv.OpenOutput(99)

	assert.ErrorContains(t, err, "invalid device id 99")
}
