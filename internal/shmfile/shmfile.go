// Package shmfile creates read-only shared-memory files for handing
// immutable blobs, keymaps mostly, to untrusted clients.
package shmfile

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// New writes payload into a fresh anonymous file under dir and
// returns a read-only descriptor for it. The write side is closed
// and its permissions dropped before returning, so the receiver
// cannot reopen the file for writing even though it still holds a
// descriptor to the same inode.
func New(dir string, payload []byte) (int, error) {
	rw, ro, err := open2(dir)
	if err != nil {
		return -1, err
	}
	defer unix.Close(rw)

	// Drop all permissions on the inode. The RO descriptor stays
	// usable; fcntl upgrades and fresh opens do not.
	if err := unix.Fchmod(rw, 0); err != nil {
		unix.Close(ro)
		return -1, fmt.Errorf("fchmod: %w", err)
	}

	if err := unix.Ftruncate(rw, int64(len(payload))); err != nil {
		unix.Close(ro)
		return -1, fmt.Errorf("ftruncate: %w", err)
	}

	data, err := unix.Mmap(rw, 0, len(payload), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(ro)
		return -1, fmt.Errorf("mmap: %w", err)
	}
	copy(data, payload)
	if err := unix.Munmap(data); err != nil {
		unix.Close(ro)
		return -1, fmt.Errorf("munmap: %w", err)
	}

	return ro, nil
}

// open2 opens the same fresh file twice, read-write and read-only,
// then unlinks it. The name only exists for the duration of the two
// opens.
func open2(dir string) (rw, ro int, err error) {
	for range 100 {
		path := filepath.Join(dir, fmt.Sprintf("taki-shared-%08x", rand.Uint32()))

		rw, err = unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
		if err == unix.EEXIST {
			continue
		}
		if err != nil {
			return -1, -1, fmt.Errorf("open %v: %w", path, err)
		}

		ro, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			unix.Close(rw)
			os.Remove(path)
			return -1, -1, fmt.Errorf("reopen %v: %w", path, err)
		}

		os.Remove(path)
		return rw, ro, nil
	}
	return -1, -1, fmt.Errorf("no free name in %v", dir)
}
