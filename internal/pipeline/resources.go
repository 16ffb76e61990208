package pipeline

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// residentMemory returns the RSS of this process, or zero.
func residentMemory() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	mem, err := p.MemoryInfo()
	if err != nil || mem == nil {
		return 0
	}
	return mem.RSS
}
