package executor

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStatus reports where the job landed and what the machine looks like.
// Printed once at startup so batch logs are debuggable after the fact.
func HostStatus(root string) string {
	var b strings.Builder
	host, _ := os.Hostname()
	fmt.Fprintf(&b, "host: %s (%d cpus)\n", host, runtime.NumCPU())

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(&b, "memory: %s total, %s available\n",
			humanBytes(vm.Total), humanBytes(vm.Available))
	}
	if du, err := disk.Usage(root); err == nil {
		fmt.Fprintf(&b, "scratch: %s free of %s (%.1f%% used)\n",
			humanBytes(du.Free), humanBytes(du.Total), du.UsedPercent)
	}
	return b.String()
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
