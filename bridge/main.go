package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

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
		debugFlag  = flag.Bool("debug", false, "Print the live axis table to the terminal")
		outFlag    = flag.String("out", "", "Serial port to write control reports to")
		mqttFlag   = flag.Bool("mqtt", false, "Publish reports over MQTT (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *mqttFlag {
		cfg.Telemetry.Enabled = true
	}

	var device quad.Device
	if *mockFlag {
		device = quad.NewMock(&cfg.Mock)
		log.Printf("Using mocked device")
	} else {
		device = quad.New(cfg.Serial.Port, cfg.Serial.BaudRate, quad.DefaultBufferSize)
	}

	sink, err := buildSink(cfg, *outFlag, *debugFlag)
	if err != nil {
		log.Fatalf("Failed to set up report sinks: %v", err)
	}

	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	log.Printf("Connected, conditioning %d axes every %v", len(cfg.Axes), cfg.Loop.Period)

	conditioner := pipeline.New(cfg)

	done := make(chan struct{})
	go func() {
		conditioner.Run(device.Frames(), sink)
		close(done)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	// Closing the device closes the frames channel, which drains the loop.
	if err := device.Close(); err != nil {
		log.Printf("Error closing device: %v", err)
	}
	<-done
	if err := sink.Close(); err != nil {
		log.Printf("Error closing sinks: %v", err)
	}
}

// buildSink assembles the report fan-out from flags and configuration.
// With nothing else configured the console table is used, so the bridge
// always has somewhere to send reports.
func buildSink(cfg *config.Config, outPort string, debug bool) (report.Sink, error) {
	var sinks report.MultiSink

	if outPort != "" {
		s, err := report.NewSerialSink(outPort, cfg.Serial.BaudRate)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}

	if cfg.Telemetry.Enabled {
		s, err := report.NewMQTTSink(cfg.Telemetry)
		if err != nil {
			return nil, err
		}
		log.Printf("Publishing reports to %s topic %s", cfg.Telemetry.Broker, cfg.Telemetry.Topic)
		sinks = append(sinks, s)
	}

	if debug || len(sinks) == 0 {
		sinks = append(sinks, report.NewConsoleSink(nil))
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}
