// Package sysmon reads host resource usage for the dashboard header.
package sysmon

import (
	"log"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const gb = 1024 * 1024 * 1024

// Sample is a point-in-time reading of host CPU and memory usage.
type Sample struct {
	CPUPercent float64
	MemPercent float64
	MemUsedGB  float64
	MemTotalGB float64
	Goroutines int
}

// Collect reads the current CPU and memory usage. A reading that fails is
// logged and left at zero so callers can keep rendering.
func Collect() Sample {
	s := Sample{Goroutines: runtime.NumGoroutine()}

	percentages, err := cpu.Percent(0, false)
	if err != nil {
		log.Printf("Warning: Could not get CPU usage: %v", err)
	} else if len(percentages) > 0 {
		s.CPUPercent = percentages[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("Warning: Could not get memory usage: %v", err)
		return s
	}
	s.MemPercent = vm.UsedPercent
	s.MemUsedGB = float64(vm.Used) / gb
	s.MemTotalGB = float64(vm.Total) / gb

	return s
}
