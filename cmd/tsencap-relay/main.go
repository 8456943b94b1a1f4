package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/ts-tools/tsencap"
)

var (
	ctx, cancel     = context.WithCancel(context.Background())
	configPath      = flag.String("c", "", "the relay config path (yaml)")
	inputPath       = flag.String("i", "", "the input path (file path or udp://host:port)")
	outputPath      = flag.String("o", "", "the output path (file path, defaults to stdout)")
	cpuProfiling    = flag.Bool("cp", false, "if yes, cpu profiling is enabled")
	memoryProfiling = flag.Bool("mp", false, "if yes, memory profiling is enabled")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	handleSignals()

	if *cpuProfiling {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	} else if *memoryProfiling {
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	if len(*configPath) <= 0 {
		fmt.Fprintln(os.Stderr, "tsencap-relay: use -c to indicate a config path")
		os.Exit(1)
	}

	cfg, err := loadRelayConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	r, err := buildReader(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("tsencap-relay: building reader failed: %w", err))
		os.Exit(1)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	w, err := buildWriter()
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("tsencap-relay: building writer failed: %w", err))
		os.Exit(1)
	}
	if c, ok := w.(io.Closer); ok {
		defer c.Close()
	}

	enc := tsencap.NewEncapsulator(cfg.PIDOutput, tsencap.NewPIDSetFromList(cfg.PIDInput), cfg.PCRReference)
	enc.SetPacking(cfg.Packing)
	if cfg.MaxBufferedPackets > 0 {
		enc.SetMaxBufferedPackets(cfg.MaxBufferedPackets)
	}

	if err := relay(ctx, r, w, enc); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("tsencap-relay: relaying failed: %w", err))
		os.Exit(1)
	}
}

func relay(ctx context.Context, r io.Reader, w io.Writer, enc *tsencap.Encapsulator) error {
	var pkt tsencap.Packet
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := io.ReadFull(r, pkt[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return fmt.Errorf("reading packet failed: %w", err)
		}
		if !pkt.Sync() {
			return errors.New("packet does not start with a sync byte")
		}

		if !enc.ProcessPacket(&pkt) {
			tsencap.Errorf("%s", enc.LastError())
		}

		if _, err := w.Write(pkt[:]); err != nil {
			return fmt.Errorf("writing packet failed: %w", err)
		}
	}
}

func handleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch)
	go func() {
		for s := range ch {
			switch s {
			case syscall.SIGABRT, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
				cancel()
				return
			}
		}
	}()
}

func buildReader(ctx context.Context) (io.Reader, error) {
	if len(*inputPath) <= 0 {
		return nil, errors.New("use -i to indicate an input path")
	}

	u, err := url.Parse(*inputPath)
	if err != nil {
		return nil, fmt.Errorf("parsing input path failed: %w", err)
	}

	switch u.Scheme {
	case "udp":
		addr, err := net.ResolveUDPAddr("udp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("resolving udp addr %s failed: %w", u.Host, err)
		}
		c, err := net.ListenMulticastUDP("udp", nil, addr)
		if err != nil {
			return nil, fmt.Errorf("listening on multicast udp addr %s failed: %w", u.Host, err)
		}
		c.SetReadBuffer(4096)
		return c, nil
	default:
		f, err := os.Open(*inputPath)
		if err != nil {
			return nil, fmt.Errorf("opening %s failed: %w", *inputPath, err)
		}
		return f, nil
	}
}

func buildWriter() (io.Writer, error) {
	if len(*outputPath) <= 0 {
		return os.Stdout, nil
	}
	f, err := os.Create(*outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s failed: %w", *outputPath, err)
	}
	return f, nil
}
