package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-cc/internal/config"
	"github.com/PixPMusic/gopher-cc/internal/logging"
	"github.com/PixPMusic/gopher-cc/internal/midi"
)

func main() {
	cmd := "list"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log := logging.Must(level)
	defer log.Sync()

	drv, err := midi.NewDriver(cfg.Driver)
	if err != nil {
		log.Fatal("Failed to initialize MIDI driver", zap.String("driver", cfg.Driver), zap.Error(err))
	}
	m := midi.NewManager(drv, log, cfg.MIDIOptions())
	defer m.Terminate()

	switch cmd {
	case "list":
		err = listPorts(m)
	case "send":
		err = sendCC(m, os.Args[2:])
	case "drivers":
		for _, name := range midi.DriverNames() {
			fmt.Println(name)
		}
	default:
		usage()
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		m.Terminate()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI output tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                            - List MIDI output ports (default)")
	fmt.Println("  send <port> <channel> <cc> <v>  - Send one control change, channel 1-16")
	fmt.Println("  drivers                         - List driver names for the config file")
}

func listPorts(m *midi.Manager) error {
	devices, err := m.ListOutputDevices(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("=== MIDI Output Ports ===")
	if len(devices) == 0 {
		fmt.Println("  (none)")
	}
	for _, d := range devices {
		fmt.Printf("  %s\n", d.Label())
	}
	return nil
}

func sendCC(m *midi.Manager, args []string) error {
	if len(args) != 4 {
		usage()
		return fmt.Errorf("send needs 4 arguments, got %d", len(args))
	}

	nums := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		nums[i] = n
	}
	id, channel, cc, value := nums[0], nums[1], nums[2], nums[3]
	if channel < 1 || channel > 16 {
		return fmt.Errorf("channel %d out of range 1-16", channel)
	}
	if cc < 0 || cc > midi.MaxDataByte || value < 0 || value > midi.MaxDataByte {
		return fmt.Errorf("cc %d value %d out of range 0-127", cc, value)
	}

	ctx := context.Background()
	if _, err := m.ListOutputDevices(ctx); err != nil {
		return err
	}
	out, err := m.Open(ctx, id)
	if err != nil {
		var connErr *midi.ConnectionError
		if errors.As(err, &connErr) && connErr.Suggestion() != "" {
			return fmt.Errorf("%w\n%s", err, connErr.Suggestion())
		}
		return err
	}
	defer m.Close(out)

	if err := m.SendControlChange(ctx, out, uint8(channel-1), uint8(cc), uint8(value)); err != nil {
		return err
	}
	fmt.Printf("Sent CC %d = %d on channel %d to %s\n", cc, value, channel, out.Device().Name)
	return nil
}
