package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"periph.io/x/conn/v3/physic"

	"lautenbacher.net/sk6812/animation"
	"lautenbacher.net/sk6812/config"
	"lautenbacher.net/sk6812/hardware"
	"lautenbacher.net/sk6812/led"
	"lautenbacher.net/sk6812/logging"
	"lautenbacher.net/sk6812/sim"
	"lautenbacher.net/sk6812/strip"
	"lautenbacher.net/sk6812/tui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the config file")
	simulate := flag.Bool("sim", false, "Show the strip in the terminal instead of driving the SPI bus")
	list := flag.Bool("list", false, "List the known LED chips and exit")
	flag.Parse()

	if *list {
		for _, name := range led.Names() {
			enc, _ := led.Lookup(name)
			fmt.Printf("%-12s %s\n", name, enc)
		}
		return
	}

	conf, err := config.ReadConfig(*cfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := logging.Init(logging.Options{
		Level:  conf.Logging.Level,
		Format: conf.Logging.Format,
		File:   conf.Logging.File,
		Buffer: *simulate,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(2)
	}

	err = run(conf, *cfile, *simulate)
	if err != nil {
		slog.Error("Exiting", "error", err)
	}
	if cerr := logging.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Failed to close log: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// stripOptions translates the hardware section into strip options.
func stripOptions(h config.HardwareConfig) ([]strip.Option, error) {
	enc, err := h.Encoding()
	if err != nil {
		return nil, err
	}
	backend, err := hardware.ParseBackend(h.Backend)
	if err != nil {
		return nil, err
	}
	return []strip.Option{
		strip.WithEncoding(enc),
		strip.WithFrequency(physic.Frequency(h.SPIFrequency) * physic.Hertz),
		strip.WithLatch(h.Latch),
		strip.WithBackend(backend),
	}, nil
}

// openStrip opens the configured strip. With simulate set the strip writes
// to a sim.Port, which is returned as well.
func openStrip(h config.HardwareConfig, simulate bool) (*strip.Strip, *sim.Port, error) {
	opts, err := stripOptions(h)
	if err != nil {
		return nil, nil, err
	}
	if !simulate {
		s, err := strip.OpenWithChipSelect(hardware.Bus(h.Bus), hardware.ChipSelect(h.ChipSelect), h.LedsTotal, opts...)
		return s, nil, err
	}
	enc, err := h.Encoding()
	if err != nil {
		return nil, nil, err
	}
	port := sim.NewPort("sim", enc)
	port.SetMaxTxSize(h.SimMaxTxSize)
	s, err := strip.New(port, h.LedsTotal, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, port, nil
}

func run(conf config.Config, cfile string, simulate bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(ossignal)
	go func() {
		select {
		case sig := <-ossignal:
			slog.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	s, port, err := openStrip(conf.Hardware, simulate)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("Failed to close strip", "error", err)
		}
	}()
	slog.Info("Strip opened", "strip", s.String(), "leds", s.Len(), "encoding", s.Encoding().String())

	runner, err := animation.New(s, conf.Runtime())
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.Watch(ctx, cfile, func(c config.Config) {
			if c.Hardware != conf.Hardware {
				slog.Warn("Hardware settings changed, restart to apply them")
			}
			runner.Reload(c.Runtime())
		})
		if err != nil {
			slog.Error("Config watcher stopped", "error", err)
		}
	}()

	if conf.Web.Addr != "" {
		serveConfig(ctx, &wg, conf.Web.Addr, cfile)
	}

	if port != nil {
		viewer := tui.New(port, s.Len(), cancel)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := viewer.Run(ctx); err != nil {
				slog.Error("Simulation viewer failed", "error", err)
				cancel()
			}
		}()
	}

	err = runner.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// serveConfig serves the runtime config API on addr until ctx is done.
func serveConfig(ctx context.Context, wg *sync.WaitGroup, addr, cfile string) {
	mux := http.NewServeMux()
	mux.Handle("/api/config", config.ConfigHandler(cfile))
	srv := &http.Server{Addr: addr, Handler: mux}

	wg.Add(2)
	go func() {
		defer wg.Done()
		slog.Info("Config API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Config API failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()
		if err := srv.Shutdown(sctx); err != nil {
			slog.Error("Config API shutdown failed", "error", err)
		}
	}()
}
