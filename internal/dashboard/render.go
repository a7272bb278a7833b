// Package dashboard renders the live terminal view. Every frame is built
// from a telemetry snapshot and a copy of the recent records, so rendering
// never holds the aggregate's locks.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"gosniff/internal/model"
	"gosniff/internal/sysmon"
	"gosniff/internal/telemetry"
)

const clearScreen = "\x1B[2J\x1B[1;1H"

// Frame geometry and per-section row limits.
const (
	fullWidth         = 100
	columnWidth       = 49
	bandwidthBarWidth = 40
	bandwidthRows     = 20
	alertRows         = 3
	connectionRows    = 8
	portColumns       = 10
	histogramBarWidth = 30
	geoWindow         = 500
	geoColumns        = 6
	activityRows      = 8
)

// Render draws one complete frame. recent must be oldest-first, as returned
// by telemetry.RecentBuffer.Items. now is the frame timestamp, injected so
// frames are reproducible.
func Render(snap *telemetry.Snapshot, recent []*model.PacketRecord, sys sysmon.Sample, now time.Time) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	renderHeader(&b, snap, sys, now)
	renderBandwidth(&b, snap.BandwidthHistory)
	renderSecurity(&b, snap.ThreatAlerts, recent)
	renderProtocolsAndConnections(&b, snap)
	renderPortActivity(&b, snap.PortActivity)
	renderSizeDistribution(&b, snap.PacketSizes)
	renderGeo(&b, recent)
	renderActivity(&b, recent)
	renderFooter(&b, now)
	return b.String()
}

func renderHeader(b *strings.Builder, snap *telemetry.Snapshot, sys sysmon.Sample, now time.Time) {
	fmt.Fprintln(b, styleBanner.Render("🚀 ADVANCED NETWORK TRAFFIC DASHBOARD"))
	fmt.Fprintln(b, styleBorder.Render(strings.Repeat("═", fullWidth)))

	duration := int64(now.Sub(snap.StartTime).Seconds())
	var pps, bps float64
	if duration > 0 {
		pps = float64(snap.TotalPackets) / float64(duration)
		bps = float64(snap.TotalBytes) / float64(duration)
	}

	fmt.Fprintf(b, "⏱️  %s %s %s %s %s %s %s %s\n",
		styleLabel.Render("Duration:"),
		styleValue.Render(fmt.Sprintf("%ds", duration)),
		styleLabel.Render("| 📦 Packets:"),
		styleValue.Render(fmt.Sprintf("%d (%.1f/s)", snap.TotalPackets, pps)),
		styleLabel.Render("| 📊 Data:"),
		styleValue.Render(fmt.Sprintf("%s (%.1f/s)", formatBytes(snap.TotalBytes), bps)),
		styleLabel.Render("| 🔗 Connections:"),
		styleValue.Render(strconv.Itoa(snap.CurrentConnections)))

	fmt.Fprintf(b, "⚡ %s %s %s %s\n",
		styleLabel.Render("Peak Bandwidth:"),
		styleAlarm.Render(formatBytes(uint64(snap.PeakBandwidth))+"/s"),
		styleLabel.Render("| Peak Packets:"),
		styleAlarm.Render(fmt.Sprintf("%.1f/s", snap.PeakPacketsPerSec)))

	fmt.Fprintf(b, "🖥️  %s %s %s %s %s %s\n",
		styleLabel.Render("Host CPU:"),
		styleValue.Render(fmt.Sprintf("%.1f%%", sys.CPUPercent)),
		styleLabel.Render("| Memory:"),
		styleValue.Render(fmt.Sprintf("%.1f%% (%.1f/%.1f GB)", sys.MemPercent, sys.MemUsedGB, sys.MemTotalGB)),
		styleLabel.Render("| Goroutines:"),
		styleValue.Render(strconv.Itoa(sys.Goroutines)))

	fmt.Fprintln(b)
}

func renderBandwidth(b *strings.Builder, history []model.BandwidthPoint) {
	fmt.Fprintln(b, styleHeading.Render("📈 REAL-TIME BANDWIDTH GRAPH"))
	if len(history) == 0 {
		fmt.Fprintf(b, "   %s\n\n", styleDim.Render("No data available yet..."))
		return
	}

	maxRate := 1.0
	for _, p := range history {
		if p.BytesPerSec > maxRate {
			maxRate = p.BytesPerSec
		}
	}
	fmt.Fprintf(b, "   %s %s/s\n", styleLabel.Render("Peak:"), styleAlarm.Render(formatBytes(uint64(maxRate))))

	points := history
	if len(points) > bandwidthRows {
		points = points[len(points)-bandwidthRows:]
	}
	for _, p := range points {
		filled := int(p.BytesPerSec / maxRate * bandwidthBarWidth)
		row := fmt.Sprintf("%-*s", bandwidthBarWidth, strings.Repeat("█", filled))
		fmt.Fprintf(b, "   %s │%s│ %s\n",
			styleDim.Render(p.Timestamp.Format("15:04:05")),
			styleGood.Render(row),
			styleLabel.Render(formatBytes(uint64(p.BytesPerSec))))
	}
	fmt.Fprintln(b)
}

func renderSecurity(b *strings.Builder, alerts []model.ThreatAlert, recent []*model.PacketRecord) {
	var counts [5]uint64
	for _, rec := range recent {
		counts[rec.ThreatLevel]++
	}
	totalThreats := counts[1] + counts[2] + counts[3] + counts[4]

	status := styleBanner.Render("✅ SECURE")
	if totalThreats > 0 {
		status = styleAlarm.Render("⚠️  THREATS DETECTED")
	}
	fmt.Fprintf(b, "%s %s %s\n",
		styleHeading.Render("🛡️  SECURITY STATUS:"),
		status,
		styleDim.Render(fmt.Sprintf("(%d alerts)", len(alerts))))

	fmt.Fprintf(b, "   %s\n", styleLabel.Render(fmt.Sprintf("Safe:%d Low:%d Med:%d High:%d Crit:%d",
		counts[0], counts[1], counts[2], counts[3], counts[4])))

	if len(alerts) > 0 {
		fmt.Fprintf(b, "   %s Recent Alerts:\n", styleAlarm.Render("🚨"))
		for i, shown := len(alerts)-1, 0; i >= 0 && shown < alertRows; i, shown = i-1, shown+1 {
			a := alerts[i]
			fmt.Fprintf(b, "   %s %s %s\n",
				threatIcon(a.Level),
				styleDim.Render(a.Timestamp.Format("15:04:05")),
				styleAccent.Render(a.Message))
		}
	}
	fmt.Fprintln(b)
}

type namedCount struct {
	Name  string
	Count uint64
}

// sortedCounts orders a counter map by count descending, name ascending for
// equal counts so frames render stably.
func sortedCounts(m map[string]uint64) []namedCount {
	out := make([]namedCount, 0, len(m))
	for name, count := range m {
		out = append(out, namedCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// topFlows returns up to n flows by packet count, key-ordered on ties.
func topFlows(flows map[string]model.ConnectionFlow, n int) []model.ConnectionFlow {
	keys := make([]string, 0, len(flows))
	for k := range flows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := flows[keys[i]], flows[keys[j]]
		if a.PacketCount != b.PacketCount {
			return a.PacketCount > b.PacketCount
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]model.ConnectionFlow, len(keys))
	for i, k := range keys {
		out[i] = flows[k]
	}
	return out
}

func renderProtocolsAndConnections(b *strings.Builder, snap *telemetry.Snapshot) {
	horiz := strings.Repeat("─", columnWidth)
	fmt.Fprintln(b, styleBorder.Render("┌"+horiz+"┬"+horiz+"┐"))

	edge := styleBorder.Render("│")
	fmt.Fprintf(b, "%s%s%s%s%s\n",
		edge, styleHeading.Render(center("🔗 PROTOCOL ANALYSIS", columnWidth)),
		edge, styleHeading.Render(center("🌍 TOP CONNECTIONS", columnWidth)),
		edge)
	fmt.Fprintln(b, styleBorder.Render("├"+horiz+"┼"+horiz+"┤"))

	protocols := sortedCounts(snap.ProtocolCounts)
	flows := topFlows(snap.Connections, connectionRows)

	rows := len(protocols)
	if len(flows) > rows {
		rows = len(flows)
	}
	if rows < 5 {
		rows = 5
	}

	blank := strings.Repeat(" ", columnWidth)
	for i := 0; i < rows; i++ {
		left := blank
		if i < len(protocols) {
			p := protocols[i]
			pct := float64(p.Count) / float64(snap.TotalPackets) * 100
			left = fmt.Sprintf(" %s %s %6.1f%%%s",
				styleGood.Render(fmt.Sprintf("%-12s", p.Name)),
				styleAccent.Render(fmt.Sprintf("%8d", p.Count)),
				pct,
				strings.Repeat(" ", columnWidth-30))
		}

		right := blank
		if i < len(flows) {
			f := flows[i]
			route := lastOctet(f.SrcIP) + "→" + lastOctet(f.DstIP)
			right = fmt.Sprintf(" %s %s %s %s%s",
				threatIcon(f.ThreatLevel),
				styleBorder.Render(fmt.Sprintf("%-15s", route)),
				styleAccent.Render(fmt.Sprintf("%8d", f.PacketCount)),
				styleLabel.Render(fmt.Sprintf("%8s", formatBytes(f.TotalBytes))),
				strings.Repeat(" ", columnWidth-36))
		}

		fmt.Fprintf(b, "%s%s%s%s%s\n", edge, left, edge, right, edge)
	}

	fmt.Fprintln(b, styleBorder.Render("└"+horiz+"┴"+horiz+"┘"))
}

func portStyle(port uint16) lipgloss.Style {
	switch {
	case port == 80 || port == 443:
		return styleGood
	case port == 22 || port == 23:
		return styleAccent
	case port == 53:
		return styleBorder
	case port > 1024:
		return styleLabel
	}
	return styleBad
}

func renderPortActivity(b *strings.Builder, ports map[uint16]uint64) {
	fmt.Fprintln(b, styleHeading.Render("🚪 TOP PORT ACTIVITY"))
	if len(ports) == 0 {
		fmt.Fprintf(b, "   %s\n\n", styleDim.Render("No port activity recorded yet..."))
		return
	}

	type portCount struct {
		Port  uint16
		Count uint64
	}
	list := make([]portCount, 0, len(ports))
	for p, c := range ports {
		list = append(list, portCount{p, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Port < list[j].Port
	})
	if len(list) > portColumns {
		list = list[:portColumns]
	}

	b.WriteString("   ")
	for _, pc := range list {
		fmt.Fprintf(b, "%s:%s ",
			portStyle(pc.Port).Render(strconv.Itoa(int(pc.Port))),
			styleDim.Render(strconv.FormatUint(pc.Count, 10)))
	}
	b.WriteString("\n\n")
}

func renderSizeDistribution(b *strings.Builder, sizes []int) {
	fmt.Fprintln(b, styleHeading.Render("📏 PACKET SIZE DISTRIBUTION"))
	if len(sizes) == 0 {
		fmt.Fprintf(b, "   %s\n\n", styleDim.Render("No packet size data available..."))
		return
	}

	var sum, small, medium, large, jumbo int
	min, max := sizes[0], sizes[0]
	for _, s := range sizes {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		switch {
		case s < 100:
			small++
		case s < 500:
			medium++
		case s < 1500:
			large++
		default:
			jumbo++
		}
	}

	fmt.Fprintf(b, "   %s %s %s %s %s %s %s %s\n",
		styleLabel.Render("Avg:"), styleAccent.Render(fmt.Sprintf("%dB", sum/len(sizes))),
		styleLabel.Render("Range:"), styleAccent.Render(fmt.Sprintf("%d-%dB", min, max)),
		styleLabel.Render("Small:"), styleGood.Render(strconv.Itoa(small)),
		styleLabel.Render("Large:"), styleBad.Render(strconv.Itoa(large+jumbo)))

	total := len(sizes)
	buckets := []struct {
		Label string
		Count int
		Style lipgloss.Style
	}{
		{"<100B  ", small, styleGood},
		{"100-500", medium, styleAccent},
		{">500B  ", large + jumbo, styleBad},
	}
	for _, bucket := range buckets {
		row := fmt.Sprintf("%-*s", histogramBarWidth, bar(uint64(bucket.Count), uint64(total), histogramBarWidth))
		fmt.Fprintf(b, "   %s│%s│ %d%%\n", bucket.Label, bucket.Style.Render(row), bucket.Count*100/total)
	}
	fmt.Fprintln(b)
}

func renderGeo(b *strings.Builder, recent []*model.PacketRecord) {
	fmt.Fprintln(b, styleHeading.Render("🌍 GEOGRAPHIC DISTRIBUTION"))

	window := recent
	if len(window) > geoWindow {
		window = window[len(window)-geoWindow:]
	}
	counts := make(map[string]uint64)
	for _, rec := range window {
		if rec.Geo != nil && rec.Geo.Country != "" {
			counts[rec.Geo.Country]++
		}
	}
	if len(counts) == 0 {
		fmt.Fprintf(b, "   %s\n\n", styleDim.Render("No geographic data available..."))
		return
	}

	countries := sortedCounts(counts)
	if len(countries) > geoColumns {
		countries = countries[:geoColumns]
	}
	b.WriteString("   ")
	for _, c := range countries {
		fmt.Fprintf(b, "%s %s: %s ",
			countryFlag(c.Name),
			styleLabel.Render(c.Name),
			styleAccent.Render(strconv.FormatUint(c.Count, 10)))
	}
	b.WriteString("\n\n")
}

func renderActivity(b *strings.Builder, recent []*model.PacketRecord) {
	fmt.Fprintln(b, styleHeading.Render("📋 LIVE ACTIVITY STREAM"))
	if len(recent) == 0 {
		fmt.Fprintf(b, "   %s\n\n", styleDim.Render("Waiting for network activity..."))
		return
	}

	for i, shown := len(recent)-1, 0; i >= 0 && shown < activityRows; i, shown = i-1, shown+1 {
		rec := recent[i]

		app := ""
		if rec.AppProtocol != "" {
			app = " (" + rec.AppProtocol + ")"
		}
		geo := ""
		if rec.Geo != nil && rec.Geo.Country != "" {
			if rec.Geo.Country == "Local Network" {
				geo = "🏠"
			} else {
				geo = "🌐"
			}
		}
		src, dst := rec.SrcIP, rec.DstIP
		if src == "" {
			src = "?"
		}
		if dst == "" {
			dst = "?"
		}
		surge := ""
		if rec.Size > 1000 {
			surge = " 📈"
		}

		fmt.Fprintf(b, "   %s %s %s%s %s → %s %s %s%s\n",
			threatIcon(rec.ThreatLevel),
			styleDim.Render(rec.Timestamp.Format("15:04:05.0")),
			styleBanner.Render(rec.Protocol),
			styleAccent.Render(app),
			styleBorder.Render(src),
			styleBorder.Render(dst),
			geo,
			styleLabel.Render(formatBytes(uint64(rec.Size))),
			surge)
	}
	fmt.Fprintln(b)
}

func renderFooter(b *strings.Builder, now time.Time) {
	fmt.Fprintf(b, "\n%s\n", styleBorder.Render(strings.Repeat("═", fullWidth)))
	fmt.Fprintln(b, styleLabel.Render("💡 CONTROLS: [Ctrl+C] Exit"))
	fmt.Fprintln(b, styleDim.Render(fmt.Sprintf("📡 Last Updated: %s UTC", now.UTC().Format("15:04:05"))))
}

// Renderer redraws the dashboard on a fixed cadence.
type Renderer struct {
	agg     *telemetry.Aggregator
	recent  *telemetry.RecentBuffer
	out     io.Writer
	refresh time.Duration
}

// NewRenderer wires a renderer to its data sources. A non-positive refresh
// falls back to one second.
func NewRenderer(agg *telemetry.Aggregator, recent *telemetry.RecentBuffer, out io.Writer, refresh time.Duration) *Renderer {
	if refresh <= 0 {
		refresh = time.Second
	}
	return &Renderer{agg: agg, recent: recent, out: out, refresh: refresh}
}

// Run redraws until ctx is cancelled.
func (r *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Draw(time.Now())
		}
	}
}

// Draw renders one frame immediately.
func (r *Renderer) Draw(now time.Time) {
	snap := r.agg.Snapshot()
	fmt.Fprint(r.out, Render(&snap, r.recent.Items(), sysmon.Collect(), now))
}
