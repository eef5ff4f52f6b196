package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/moondog-sim/quadrant/pkg/config"
	"github.com/moondog-sim/quadrant/pkg/pipeline"
	"github.com/moondog-sim/quadrant/pkg/quad"
	"github.com/moondog-sim/quadrant/pkg/report"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked device instead of serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.moondog-sim.quadmon")

	window := application.NewWindow("Quadrant Monitor")
	window.Resize(fyne.NewSize(760, 480))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		window:  window,
		useMock: *mockFlag,
	}

	axisView := newAxisView(cfg)
	state.axisView = axisView

	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		axisView,
	))

	window.ShowAndRun()

	// Window closed: tear down any running chain.
	disconnect(state)
}

// monitorChain tracks the components of a running conditioning chain for
// graceful shutdown.
type monitorChain struct {
	device      quad.Device
	conditioner *pipeline.Conditioner
	done        chan struct{} // Closed when the pipeline goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg      *config.Config
	window   fyne.Window
	axisView *axisView

	connectBtn *widget.Button
	useMock    bool
	chain      *monitorChain

	// Throttling for view updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, nil,
		container.NewHBox(connectBtn, settingsBtn),
		nil,
		nil,
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		disconnect(state)
		if state.useMock {
			fmt.Println("Disconnected from mocked device")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var device quad.Device
	if state.useMock {
		device = quad.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked device")
	} else {
		device = quad.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, quad.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}

	conditioner := pipeline.New(state.cfg)

	// Throttle view updates to ~30 FPS; the loop may cycle much faster.
	const updateInterval = 33 * time.Millisecond
	conditioner.OnUpdate(func(frame report.Frame) {
		state.updateMu.Lock()
		tooSoon := time.Since(state.lastUpdateTime) < updateInterval
		if !tooSoon {
			state.lastUpdateTime = time.Now()
		}
		state.updateMu.Unlock()
		if tooSoon {
			return
		}

		// Widgets may only be touched on the main Fyne thread.
		fyne.Do(func() {
			state.axisView.UpdateData(frame)
		})
	})

	chain := &monitorChain{
		device:      device,
		conditioner: conditioner,
		done:        make(chan struct{}),
	}
	go func() {
		conditioner.Run(device.Frames(), discardSink{})
		close(chain.done)
	}()
	state.chain = chain

	if state.useMock {
		fmt.Println("Connected to mocked device")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}
}

// disconnect gracefully closes the running chain, if any.
func disconnect(state *appState) {
	if state.chain == nil {
		return
	}
	if err := state.chain.device.Close(); err != nil {
		log.Printf("Error closing device: %v", err)
	}
	<-state.chain.done
	state.chain = nil
}

// discardSink drops reports; the monitor only observes the pipeline through
// its update callbacks.
type discardSink struct{}

func (discardSink) Send(report.Frame) error { return nil }
func (discardSink) Close() error            { return nil }
