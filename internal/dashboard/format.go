package dashboard

import (
	"fmt"
	"strings"

	"gosniff/internal/model"
)

var byteUnits = []string{"B", "KB", "MB", "GB"}

// formatBytes renders a byte count with one decimal, stepping units by 1024.
func formatBytes(n uint64) string {
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, byteUnits[unit])
}

func threatIcon(l model.ThreatLevel) string {
	switch l {
	case model.ThreatLow:
		return "🟡"
	case model.ThreatMedium:
		return "🟠"
	case model.ThreatHigh:
		return "🔴"
	case model.ThreatCritical:
		return "💀"
	}
	return "✅"
}

func countryFlag(country string) string {
	switch country {
	case "United States":
		return "🇺🇸"
	case "United Kingdom":
		return "🇬🇧"
	case "Australia":
		return "🇦🇺"
	case "Germany":
		return "🇩🇪"
	case "France":
		return "🇫🇷"
	case "Local Network":
		return "🏠"
	}
	return "🌐"
}

// lastOctet shortens an address to its final dotted component, so
// 192.168.1.50 displays as 50. IPv6 addresses pass through whole.
func lastOctet(ip string) string {
	parts := strings.Split(ip, ".")
	return parts[len(parts)-1]
}

// bar draws count as a share of total, scaled to width cells.
func bar(count, total uint64, width int) string {
	if total == 0 {
		return ""
	}
	n := int(count * uint64(width) / total)
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// center pads s with spaces to width, splitting the slack evenly.
func center(s string, width int) string {
	slack := width - len([]rune(s))
	if slack <= 0 {
		return s
	}
	left := slack / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", slack-left)
}
