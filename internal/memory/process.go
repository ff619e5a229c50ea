package memory

import "fmt"

// Process is an Accessor over another process's address space.
type Process struct {
	pid    int
	handle processHandle
}

// OpenProcess attaches to pid for reading and writing.
func OpenProcess(pid int) (*Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("open process: invalid pid %d", pid)
	}
	h, err := openHandle(pid)
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}
	return &Process{pid: pid, handle: h}, nil
}

// PID returns the attached process id.
func (p *Process) PID() int {
	return p.pid
}

// Close releases the process handle.
func (p *Process) Close() error {
	return closeHandle(p.handle)
}

// ReadBytes implements Accessor.
func (p *Process) ReadBytes(addr Address, n int) ([]byte, error) {
	if addr == 0 {
		return nil, ErrInvalidAddress
	}
	buf := make([]byte, n)
	read, err := readProcess(p, addr, buf)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at %s: %w", n, addr, err)
	}
	if read != n {
		return nil, fmt.Errorf("read at %s: %w (%d of %d)", addr, ErrShortRead, read, n)
	}
	return buf, nil
}

// WriteBytes implements Accessor.
func (p *Process) WriteBytes(addr Address, data []byte) error {
	if addr == 0 {
		return ErrInvalidAddress
	}
	written, err := writeProcess(p, addr, data)
	if err != nil {
		return fmt.Errorf("write %d bytes at %s: %w", len(data), addr, err)
	}
	if written != len(data) {
		return fmt.Errorf("write at %s: %w (%d of %d)", addr, ErrShortWrite, written, len(data))
	}
	return nil
}
