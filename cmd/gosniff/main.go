// Command gosniff captures network traffic, classifies it, and renders
// live telemetry in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gosniff/internal/capture"
	"gosniff/internal/config"
	"gosniff/internal/dashboard"
	"gosniff/internal/export"
	"gosniff/internal/logging"
	"gosniff/internal/model"
	"gosniff/internal/probe"
	"gosniff/internal/server"
	"gosniff/internal/telemetry"
)

const (
	version           = "1.0.0"
	defaultConfigPath = "configs/config.yaml"
)

var (
	styleBanner = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // Green
	styleGood   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))            // Green
	styleInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))            // Cyan
	styleHint   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))           // Yellow
	styleNote   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))            // Blue
)

type options struct {
	iface      string
	pcapFile   string
	protocol   string
	port       uint
	count      uint64
	dashboard  bool
	interval   uint
	verbose    bool
	exportJSON string
	exportCSV  string
	exportDir  string
	configPath string
	genConfig  bool
	listIfaces bool
	mode       string
}

func main() {
	// --- Command-Line Flag Parsing ---
	var opts options
	flag.StringVar(&opts.iface, "i", "", "Interface to capture from (default: first active device).")
	flag.StringVar(&opts.pcapFile, "r", "", "Replay packets from a pcap file instead of a live interface.")
	flag.StringVar(&opts.protocol, "p", "", "Protocol filter: tcp, udp, icmp, http, dns.")
	flag.UintVar(&opts.port, "port", 0, "Port filter matching either endpoint.")
	flag.Uint64Var(&opts.count, "c", 0, "Stop after this many packets (0 = unlimited).")
	flag.BoolVar(&opts.dashboard, "dashboard", false, "Render the full-screen dashboard instead of per-packet lines.")
	flag.UintVar(&opts.interval, "interval", 0, "Interim statistics interval in seconds (0 = config value).")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose per-packet detail blocks.")
	flag.StringVar(&opts.exportJSON, "export-json", "", "Write captured records to this JSON file on exit.")
	flag.StringVar(&opts.exportCSV, "export-csv", "", "Write captured records to this CSV file on exit.")
	flag.StringVar(&opts.exportDir, "export-dir", "", "Write a timestamped session export (JSON, CSV, summary) under this directory on exit.")
	flag.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the YAML configuration file.")
	flag.BoolVar(&opts.genConfig, "generate-config", false, "Write the default configuration file and exit.")
	flag.BoolVar(&opts.listIfaces, "list-interfaces", false, "List capture-capable interfaces and exit.")
	flag.StringVar(&opts.mode, "mode", "capture", "Operating mode: 'capture' locally, 'publish' records to NATS, or 'subscribe' to a remote publisher.")
	flag.Parse()

	// --- One-Shot Commands ---
	if opts.genConfig {
		if err := config.Default().Save(opts.configPath); err != nil {
			log.Fatalf("Failed to generate configuration: %v", err)
		}
		fmt.Printf("✅ Default configuration generated at: %s\n", opts.configPath)
		return
	}
	if opts.listIfaces {
		listInterfaces()
		return
	}

	// --- Configuration and Logging ---
	cfg := loadConfig(opts.configPath)
	closeLog, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer closeLog()
	log.Printf("Starting gosniff v%s", version)

	if opts.protocol != "" && !validProtocol(opts.protocol) {
		log.Fatalf("Invalid protocol filter %q. Valid filters: tcp, udp, icmp, http, dns.", opts.protocol)
	}
	if opts.port > 65535 {
		log.Fatalf("Invalid port filter %d. Ports range from 0 to 65535.", opts.port)
	}

	// --- Mode Dispatch ---
	switch opts.mode {
	case "capture":
		runCapture(cfg, &opts)
	case "publish":
		runPublish(cfg, &opts)
	case "subscribe":
		runSubscribe(cfg, &opts)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", opts.mode)
		flag.Usage()
		os.Exit(1)
	}
}

// loadConfig falls back to the built-in defaults when the default config
// file is absent; an explicitly given -config path must exist.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if path != defaultConfigPath {
			log.Fatalf("Failed to load config: %v", err)
		}
		return config.Default()
	}
	log.Println("Configuration loaded successfully.")
	return cfg
}

func validProtocol(p string) bool {
	switch strings.ToLower(p) {
	case "tcp", "udp", "icmp", "http", "dns":
		return true
	}
	return false
}

func recordFilter(opts *options) *capture.Filter {
	if opts.protocol == "" && opts.port == 0 {
		return nil
	}
	return &capture.Filter{Protocol: opts.protocol, Port: uint16(opts.port)}
}

// openSource picks the pcap file when -r is set, otherwise a live
// interface from the flag, the config, or device discovery.
func openSource(cfg *config.Config, opts *options) (*capture.Source, error) {
	if opts.pcapFile != "" {
		log.Printf("Reading packets from '%s'...", opts.pcapFile)
		return capture.OpenOffline(opts.pcapFile)
	}

	iface := opts.iface
	if iface == "" {
		iface = cfg.Capture.Interface
	}
	if iface == "" {
		name, err := capture.FirstActiveInterface()
		if err != nil {
			return nil, err
		}
		iface = name
	}
	log.Printf("Starting packet capture on interface: %s", iface)
	return capture.OpenLive(iface, cfg.Capture.SnapshotLen, cfg.Capture.Promiscuous)
}

func statsInterval(cfg *config.Config, opts *options) time.Duration {
	if opts.interval > 0 {
		return time.Duration(opts.interval) * time.Second
	}
	return config.Interval(cfg.Dashboard.StatsInterval, 10*time.Second)
}

// startSinks launches the optional config-gated consumers of the
// aggregate. The returned function waits for them to drain after the
// context is cancelled.
func startSinks(ctx context.Context, cfg *config.Config, agg *telemetry.Aggregator, recent *telemetry.RecentBuffer) func() {
	var wg sync.WaitGroup

	if cfg.API.Enabled {
		api := server.New(cfg.API, agg, recent, config.Interval(cfg.Dashboard.RefreshInterval, time.Second))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := api.Run(ctx); err != nil {
				log.Printf("Error: API server failed: %v", err)
			}
		}()
	}

	var writer *export.FlowWriter
	if cfg.ClickHouse.Enabled {
		w, err := export.NewFlowWriter(cfg.ClickHouse, config.Interval(cfg.ClickHouse.FlushInterval, 30*time.Second))
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		writer = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx, agg)
		}()
	}

	return func() {
		wg.Wait()
		if writer != nil {
			if err := writer.Close(); err != nil {
				log.Printf("Warning: closing ClickHouse connection: %v", err)
			}
		}
	}
}

// runCapture owns the local pipeline: pcap source, decoder, classifier,
// aggregator, and one of the two terminal views.
func runCapture(cfg *config.Config, opts *options) {
	src, err := openSource(cfg, opts)
	if err != nil {
		log.Fatalf("Error opening capture source: %v", err)
	}
	defer src.Close()

	stream := capture.NewStream(src, recordFilter(opts), opts.count, cfg.Capture.ChannelSize)

	start := time.Now()
	agg := telemetry.NewAggregator(start)
	recent := telemetry.NewRecentBuffer(cfg.Capture.RecentBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Graceful Shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping capture...")
		cancel()
		src.Close() // unblocks the pcap read
	}()

	stopSinks := startSinks(ctx, cfg, agg, recent)
	go stream.Run(ctx)

	printer := dashboard.NewStream(os.Stdout, opts.verbose)

	if opts.dashboard {
		fmt.Println(styleBanner.Render("🚀 Starting Interactive Dashboard Mode"))
		fmt.Println(styleInfo.Render(fmt.Sprintf("📡 Interface: %s", src.Name())))
		fmt.Println(styleHint.Render("Press Ctrl+C to stop"))
		fmt.Println()

		renderer := dashboard.NewRenderer(agg, recent, os.Stdout, config.Interval(cfg.Dashboard.RefreshInterval, time.Second))
		rendererDone := make(chan struct{})
		go func() {
			renderer.Run(ctx)
			close(rendererDone)
		}()

		for rec := range stream.Out() {
			agg.Ingest(rec)
			recent.Append(rec)
		}
		cancel()
		<-rendererDone
	} else {
		printCaptureBanner(src.Name(), opts)

		statsTicker := time.NewTicker(statsInterval(cfg, opts))
		defer statsTicker.Stop()
	loop:
		for {
			select {
			case rec, ok := <-stream.Out():
				if !ok {
					break loop
				}
				agg.Ingest(rec)
				recent.Append(rec)
				printer.Print(rec)
			case <-statsTicker.C:
				snap := agg.Snapshot()
				printer.InterimStats(&snap, time.Since(start))
			}
		}
		cancel()
	}

	stopSinks()
	finish(opts, printer, agg, recent, start)
}

func printCaptureBanner(source string, opts *options) {
	fmt.Println(styleBanner.Render("🚀 Starting Advanced Packet Capture"))
	fmt.Println(styleInfo.Render(fmt.Sprintf("📡 Interface: %s", source)))
	if opts.protocol != "" {
		fmt.Println(styleHint.Render(fmt.Sprintf("🔍 Protocol Filter: %s", opts.protocol)))
	}
	if opts.port != 0 {
		fmt.Println(styleHint.Render(fmt.Sprintf("🚪 Port Filter: %d", opts.port)))
	}
	if opts.count > 0 {
		fmt.Println(styleNote.Render(fmt.Sprintf("📊 Capture Limit: %d packets", opts.count)))
	}
	fmt.Println(styleGood.Render("🎯 Capturing packets... (Press Ctrl+C to stop)"))
	fmt.Println()
}

// runPublish captures and classifies locally but ships every record to
// NATS instead of aggregating it.
func runPublish(cfg *config.Config, opts *options) {
	pub, err := probe.NewPublisher(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	src, err := openSource(cfg, opts)
	if err != nil {
		log.Fatalf("Error opening capture source: %v", err)
	}
	defer src.Close()

	stream := capture.NewStream(src, recordFilter(opts), opts.count, cfg.Capture.ChannelSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping publisher...")
		cancel()
		src.Close()
	}()

	go stream.Run(ctx)
	log.Printf("Publishing records to subject '%s'...", cfg.NATS.Subject)

	var published uint64
	for rec := range stream.Out() {
		if err := pub.Publish(rec); err != nil {
			log.Printf("Failed to publish record: %v", err)
			continue
		}
		published++
		if published%1000 == 0 {
			log.Printf("%d records published...", published)
		}
	}
	log.Printf("Publisher stopped after %d records.", published)
}

// runSubscribe feeds remotely captured records through the same
// aggregation and display path; no local capture device is needed.
func runSubscribe(cfg *config.Config, opts *options) {
	start := time.Now()
	agg := telemetry.NewAggregator(start)
	recent := telemetry.NewRecentBuffer(cfg.Capture.RecentBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSinks := startSinks(ctx, cfg, agg, recent)

	printer := dashboard.NewStream(os.Stdout, opts.verbose)
	handler := func(rec *model.PacketRecord) {
		agg.Ingest(rec)
		recent.Append(rec)
		if !opts.dashboard {
			printer.Print(rec)
		}
	}

	sub, err := probe.NewSubscriber(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	if err := sub.Start(handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	var rendererDone chan struct{}
	if opts.dashboard {
		renderer := dashboard.NewRenderer(agg, recent, os.Stdout, config.Interval(cfg.Dashboard.RefreshInterval, time.Second))
		rendererDone = make(chan struct{})
		go func() {
			renderer.Run(ctx)
			close(rendererDone)
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
	if rendererDone != nil {
		<-rendererDone
	}
	sub.Close()

	stopSinks()
	finish(opts, printer, agg, recent, start)
}

// finish prints the final summary from the aggregate and performs the
// requested exports from the recent-record buffer.
func finish(opts *options, printer *dashboard.Stream, agg *telemetry.Aggregator, recent *telemetry.RecentBuffer, start time.Time) {
	elapsed := time.Since(start)
	snap := agg.Snapshot()
	recs := recent.Items()

	printer.FinalSummary(&snap, recs, elapsed)

	if opts.exportJSON != "" {
		if err := export.WriteJSON(opts.exportJSON, recs); err != nil {
			log.Printf("Error: %v", err)
		} else {
			log.Printf("Exported %d packets to JSON file: %s", len(recs), opts.exportJSON)
		}
	}
	if opts.exportCSV != "" {
		if err := export.WriteCSV(opts.exportCSV, recs); err != nil {
			log.Printf("Error: %v", err)
		} else {
			log.Printf("Exported %d packets to CSV file: %s", len(recs), opts.exportCSV)
		}
	}
	if opts.exportDir != "" {
		dir, err := export.WriteSession(opts.exportDir, recs, snap)
		if err != nil {
			log.Printf("Error: %v", err)
		} else {
			log.Printf("Session export written to %s", dir)
		}
	}

	log.Printf("Stopped packet capture. Captured %d packets in %d seconds", snap.TotalPackets, int64(elapsed.Seconds()))
}

func listInterfaces() {
	devs, err := capture.ListInterfaces()
	if err != nil {
		log.Fatalf("Failed to list interfaces: %v", err)
	}

	fmt.Println(styleBanner.Render("🌐 Available Network Interfaces:"))
	fmt.Println()

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Interface", "Description", "IP Addresses", "Status")
	for _, d := range devs {
		status := "DOWN"
		if len(d.Addresses) > 0 {
			status = "UP"
		}
		if d.Loopback {
			status += " (loopback)"
		}
		tbl.Row(d.Name, d.Description, strings.Join(d.Addresses, ", "), status)
	}
	fmt.Println(tbl)

	fmt.Println()
	fmt.Println(styleHint.Render("💡 Usage example:"))
	fmt.Println(styleInfo.Render("  sudo gosniff -i eth0 -dashboard"))
	fmt.Println(styleInfo.Render("  sudo gosniff -i wlan0 -p http -v"))
}
