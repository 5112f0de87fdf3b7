package build

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"suimu/internal/services"
)

// LockFileName is created inside the output directory while a build runs.
const LockFileName = ".suimu.lock"

// ErrLocked reports that another build holds the library lock.
var ErrLocked = errors.New("another build is running against this output directory")

// Lock guards an output directory against concurrent builds.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the library lock without blocking.
func AcquireLock(outputDir string) (*Lock, error) {
	path := filepath.Join(outputDir, LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "lock", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the library.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
