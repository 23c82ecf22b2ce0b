package executor

import (
	"fmt"
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// terminateFn is swappable so scheduler tests never signal real processes.
var terminateFn = terminateChildren

// terminateChildren walks the scheduler's process tree and sends SIGTERM.
// Grandchildren (the executables' own subprocesses) are always signalled.
// Direct children are signalled only when force is set and their pid is not
// in spare, so the task that reported the failure finishes its own shutdown.
func terminateChildren(spare []int, force bool) {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logWarn(fmt.Sprintf("terminate: inspect own process: %v", err))
		return
	}
	children, err := self.Children()
	if err != nil {
		// ErrorNoChildren lands here too, nothing to do.
		return
	}

	spared := make(map[int32]bool, len(spare))
	for _, pid := range spare {
		spared[int32(pid)] = true
	}

	for _, child := range children {
		signalDescendants(child)
		if force && !spared[child.Pid] {
			if err := child.SendSignal(syscall.SIGTERM); err != nil {
				logWarn(fmt.Sprintf("terminate: signal pid %d: %v", child.Pid, err))
			}
		}
	}
}

func signalDescendants(p *process.Process) {
	kids, err := p.Children()
	if err != nil {
		return
	}
	for _, kid := range kids {
		signalDescendants(kid)
		if err := kid.SendSignal(syscall.SIGTERM); err != nil {
			logWarn(fmt.Sprintf("terminate: signal pid %d: %v", kid.Pid, err))
		}
	}
}
