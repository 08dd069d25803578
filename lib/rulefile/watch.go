// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package rulefile

import (
	"encoding/binary"
	"fmt"

	"github.com/rolewarden/rolewarden/lib/ref"
	"golang.org/x/sys/unix"
)

// Watch starts an inotify watcher on the rules directory and invokes
// onChange with the affected guild for every completed write to a rule
// document. The returned stop function shuts the watcher down and
// closes the inotify fd; it is idempotent.
//
// The watcher monitors the directory (not individual files) for
// IN_CLOSE_WRITE and IN_MOVED_TO, so both in-place writes and atomic
// temp-file-and-rename replacements are caught: a rename creates a new
// inode that a file-level watch on the old inode would miss.
//
// Notifications are raw: a burst of writes to one file produces one
// onChange call per write. Deliberately no coalescing here — the rule
// store's trailing-edge debounce owns that.
func (s *Source) Watch(onChange func(ref.GuildID)) (func(), error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("rulefile: inotify init: %w", err)
	}

	if _, err := unix.InotifyAddWatch(fd, s.directory, unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rulefile: watching %s: %w", s.directory, err)
	}

	stopChannel := make(chan struct{})
	go watchLoop(fd, onChange, stopChannel)

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		close(stopChannel)
	}
	return stop, nil
}

// watchLoop polls the inotify fd and dispatches change notifications.
// Uses poll(2) with a 100ms timeout for responsive stop-channel
// checking.
func watchLoop(fd int, onChange func(ref.GuildID), stopChannel <-chan struct{}) {
	defer unix.Close(fd)

	buffer := make([]byte, 4096)

	for {
		select {
		case <-stopChannel:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			// Fatal poll error: the watcher exits and rule edits stop
			// being picked up until restart. Reads still serve the
			// published rules.
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		for _, guild := range changedGuilds(buffer[:bytesRead]) {
			onChange(guild)
		}
	}
}

// changedGuilds extracts the guilds whose rule documents the buffered
// inotify events touch. Event layout from inotify(7):
//
//	struct inotify_event {
//	    int32_t  wd;     // offset 0
//	    uint32_t mask;   // offset 4
//	    uint32_t cookie; // offset 8
//	    uint32_t len;    // offset 12
//	    char     name[]; // offset 16, null-padded to alignment
//	};
func changedGuilds(buffer []byte) []ref.GuildID {
	var guilds []ref.GuildID
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}

		if nameLength > 0 {
			nameBytes := buffer[offset+unix.SizeofInotifyEvent : offset+eventSize]
			if guild := guildForFilename(nullTerminatedString(nameBytes)); !guild.IsZero() {
				guilds = append(guilds, guild)
			}
		}

		offset += eventSize
	}
	return guilds
}

// nullTerminatedString extracts a string from a null-padded byte
// slice, stopping at the first null byte.
func nullTerminatedString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
