//go:build windows

package memory

import (
	"golang.org/x/sys/windows"
)

type processHandle = windows.Handle

func openHandle(pid int) (processHandle, error) {
	return windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_VM_WRITE|windows.PROCESS_VM_OPERATION|windows.PROCESS_QUERY_INFORMATION,
		false, uint32(pid))
}

func closeHandle(h processHandle) error {
	return windows.CloseHandle(h)
}

func readProcess(p *Process, addr Address, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	return int(n), err
}

func writeProcess(p *Process, addr Address, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var n uintptr
	err := windows.WriteProcessMemory(p.handle, uintptr(addr), &data[0], uintptr(len(data)), &n)
	return int(n), err
}
