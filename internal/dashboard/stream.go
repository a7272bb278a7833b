package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gosniff/internal/model"
	"gosniff/internal/telemetry"
)

// talkerRows caps the top-talkers section of the final summary.
const talkerRows = 5

// Stream is the line-per-packet view used when the full dashboard is off.
type Stream struct {
	out     io.Writer
	verbose bool
}

func NewStream(out io.Writer, verbose bool) *Stream {
	return &Stream{out: out, verbose: verbose}
}

// Print writes one record in the configured style.
func (s *Stream) Print(rec *model.PacketRecord) {
	if s.verbose {
		s.printVerbose(rec)
		return
	}
	s.printSimple(rec)
}

func (s *Stream) printSimple(rec *model.PacketRecord) {
	src, dst := rec.SrcIP, rec.DstIP
	if src == "" {
		src = "N/A"
	}
	if dst == "" {
		dst = "N/A"
	}
	fmt.Fprintf(s.out, "🕐 %s | %s %s | %s -> %s | %s\n",
		styleLabel.Render(rec.Timestamp.Format("15:04:05.000")),
		styleBanner.Render(rec.Protocol),
		styleAccent.Render(rec.AppProtocol),
		styleBorder.Render(src),
		styleBorder.Render(dst),
		rec.Description)
}

func (s *Stream) printVerbose(rec *model.PacketRecord) {
	fmt.Fprintln(s.out, styleBanner.Render(fmt.Sprintf("[Packet #%d]", rec.Number)))
	fmt.Fprintf(s.out, "🕐 Timestamp: %s\n",
		styleLabel.Render(rec.Timestamp.UTC().Format("2006-01-02 15:04:05.000")+" UTC"))
	fmt.Fprintf(s.out, "📟 Ethernet: %s -> %s\n",
		styleBorder.Render(rec.SrcMAC), styleBorder.Render(rec.DstMAC))

	if rec.SrcIP != "" && rec.DstIP != "" {
		fmt.Fprintf(s.out, "🌐 IP: %s -> %s (%s)\n",
			styleGood.Render(rec.SrcIP), styleGood.Render(rec.DstIP), styleAccent.Render(rec.Protocol))
	}
	if rec.SrcPort != 0 && rec.DstPort != 0 {
		fmt.Fprintf(s.out, "🚪 Ports: %d -> %d\n", rec.SrcPort, rec.DstPort)
	}
	if rec.Flags != "" {
		fmt.Fprintf(s.out, "🏁 Flags: %s\n", styleBad.Render(rec.Flags))
	}
	if rec.AppProtocol != "" {
		fmt.Fprintf(s.out, "📱 Application: %s\n", styleValue.Render(rec.AppProtocol))
	}

	fmt.Fprintf(s.out, "📊 Size: %d bytes (payload: %d bytes)\n", rec.Size, rec.PayloadSize)
	fmt.Fprintf(s.out, "💬 Description: %s\n", rec.Description)
	fmt.Fprintln(s.out, styleDim.Render(strings.Repeat("─", 80)))
}

// InterimStats prints the aggregate totals injected between packet lines
// on the stats interval.
func (s *Stream) InterimStats(snap *telemetry.Snapshot, elapsed time.Duration) {
	fmt.Fprintf(s.out, "\n%s\n", styleBanner.Render("📈 Interim Statistics"))
	fmt.Fprintln(s.out, styleBorder.Render(strings.Repeat("═", 50)))

	secs := int64(elapsed.Seconds())
	var rate float64
	if secs > 0 {
		rate = float64(snap.TotalPackets) / float64(secs)
	}

	fmt.Fprintf(s.out, "⏱️  Duration: %ds | 📦 Packets: %d (%.1f/s)\n", secs, snap.TotalPackets, rate)
	fmt.Fprintf(s.out, "📊 Total Data: %s\n", formatBytes(snap.TotalBytes))

	fmt.Fprintln(s.out, "🔗 Protocols:")
	for _, p := range sortedCounts(snap.ProtocolCounts) {
		fmt.Fprintf(s.out, "   %s %s: %d\n", styleGood.Render("▶"), styleAccent.Render(p.Name), p.Count)
	}

	fmt.Fprintln(s.out, styleBorder.Render(strings.Repeat("═", 50)))
	fmt.Fprintln(s.out)
}

// FinalSummary prints the end-of-capture report: aggregate totals, the
// protocol and application breakdown tables, the busiest source addresses,
// and a threat recap over the recently buffered records.
func (s *Stream) FinalSummary(snap *telemetry.Snapshot, recent []*model.PacketRecord, elapsed time.Duration) {
	fmt.Fprintf(s.out, "\n%s\n", styleBanner.Render("🏁 Capture Complete - Final Summary"))
	fmt.Fprintln(s.out, styleBorder.Render(strings.Repeat("═", 80)))

	secs := int64(elapsed.Seconds())
	var pps, bps float64
	if secs > 0 {
		pps = float64(snap.TotalPackets) / float64(secs)
		bps = float64(snap.TotalBytes) / float64(secs)
	}

	fmt.Fprintf(s.out, "⏱️  Total Duration: %ds\n", secs)
	fmt.Fprintf(s.out, "📦 Total Packets: %d (%.2f packets/second)\n", snap.TotalPackets, pps)
	fmt.Fprintf(s.out, "📊 Total Data: %s (%.2f bytes/second)\n", formatBytes(snap.TotalBytes), bps)

	fmt.Fprintf(s.out, "\n%s\n", styleHeading.Render("🔗 Protocol Distribution:"))
	fmt.Fprintln(s.out, breakdownTable("Protocol", snap.ProtocolCounts, snap.TotalPackets))

	if len(snap.AppProtocolCounts) > 0 {
		fmt.Fprintf(s.out, "\n%s\n", styleHeading.Render("📱 Application Protocols:"))
		fmt.Fprintln(s.out, breakdownTable("Application", snap.AppProtocolCounts, snap.TotalPackets))
	}

	if len(snap.TopTalkers) > 0 {
		fmt.Fprintf(s.out, "\n%s\n", styleHeading.Render("📤 Top Talkers:"))
		talkers := sortedCounts(snap.TopTalkers)
		if len(talkers) > talkerRows {
			talkers = talkers[:talkerRows]
		}
		for _, talker := range talkers {
			fmt.Fprintf(s.out, "   %s %s: %d packets\n", styleGood.Render("▶"), styleAccent.Render(talker.Name), talker.Count)
		}
	}

	s.threatRecap(recent)

	fmt.Fprintln(s.out, styleBorder.Render(strings.Repeat("═", 80)))
}

// threatRecap counts levels over the recently buffered records, the same
// window the dashboard's security section watches.
func (s *Stream) threatRecap(recent []*model.PacketRecord) {
	var counts [5]uint64
	for _, rec := range recent {
		counts[rec.ThreatLevel]++
	}

	fmt.Fprintf(s.out, "\n%s %s\n",
		styleHeading.Render("🛡️  Threat Recap:"),
		styleDim.Render(fmt.Sprintf("(last %d packets)", len(recent))))
	if counts[1]+counts[2]+counts[3]+counts[4] == 0 {
		fmt.Fprintf(s.out, "   %s\n", styleBanner.Render("✅ No threats detected"))
		return
	}
	for lvl := model.ThreatCritical; lvl > model.ThreatSafe; lvl-- {
		if counts[lvl] > 0 {
			fmt.Fprintf(s.out, "   %s %s: %d\n", threatIcon(lvl), styleAccent.Render(lvl.String()), counts[lvl])
		}
	}
}

func breakdownTable(label string, counts map[string]uint64, total uint64) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(label, "Packets", "Percentage")
	for _, c := range sortedCounts(counts) {
		pct := 0.0
		if total > 0 {
			pct = float64(c.Count) / float64(total) * 100
		}
		t.Row(c.Name, strconv.FormatUint(c.Count, 10), fmt.Sprintf("%.1f%%", pct))
	}
	return t
}
