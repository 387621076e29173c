//go:build unix
// +build unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"golang.org/x/sys/unix"
)

// envDetached marks the re-executed background process.
const envDetached = "JACK_UMIDI_DETACHED"

func detached() bool {
	return os.Getenv(envDetached) != ""
}

// detach starts a copy of the process in a new session with its standard
// streams on /dev/null and returns once it is running.
func detach() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), envDetached+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// dropPrivileges switches to name's uid, primary gid and supplementary
// groups. Groups go first; they cannot be changed once uid is dropped.
func dropPrivileges(name string) error {
	u, err := user.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrPrivilegeDrop, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("%w: uid %q: %v", contracts.ErrPrivilegeDrop, u.Uid, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("%w: gid %q: %v", contracts.ErrPrivilegeDrop, u.Gid, err)
	}

	groups := []int{gid}
	if ids, err := u.GroupIds(); err == nil {
		for _, id := range ids {
			if g, err := strconv.Atoi(id); err == nil && g != gid {
				groups = append(groups, g)
			}
		}
	}

	if err := unix.Setgroups(groups); err != nil {
		return fmt.Errorf("%w: setgroups: %v", contracts.ErrPrivilegeDrop, err)
	}
	if err := unix.Setgid(gid); err != nil {
		return fmt.Errorf("%w: setgid %d: %v", contracts.ErrPrivilegeDrop, gid, err)
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("%w: setuid %d: %v", contracts.ErrPrivilegeDrop, uid, err)
	}
	if unix.Getuid() != uid || unix.Geteuid() != uid {
		return fmt.Errorf("%w: still running as uid %d", contracts.ErrPrivilegeDrop, unix.Geteuid())
	}
	return nil
}
