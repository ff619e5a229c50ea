//go:build !linux && !windows

package memory

type processHandle struct{}

func openHandle(int) (processHandle, error) {
	return processHandle{}, ErrUnsupportedPlatform
}

func closeHandle(processHandle) error {
	return nil
}

func readProcess(*Process, Address, []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func writeProcess(*Process, Address, []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}
