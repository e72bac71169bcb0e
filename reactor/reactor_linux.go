//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based edge-triggered reactor implementation and factory.

package reactor

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mux/api"
)

// linuxReactor is an epoll-based event reactor.
type linuxReactor struct {
	epfd   int
	wakefd int
	raw    []unix.EpollEvent

	// mu guards the descriptors against Close while another goroutine
	// wakes the loop.
	mu     sync.RWMutex
	closed bool
}

// New constructs a new platform-specific reactor for Linux.
func New() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "epoll create")
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, errors.Wrap(err, "eventfd create")
	}
	r := &linuxReactor{epfd: epfd, wakefd: wakefd}
	if err := r.Register(wakefd, api.WakeToken, api.InterestRead); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Register adds fd to the epoll interest list in edge-triggered mode.
func (r *linuxReactor) Register(fd int, tok api.Token, interest api.Interest) error {
	ev := epollEvent(tok, interest)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return errors.Wrapf(err, "epoll ctl add fd=%d", fd)
	}
	return nil
}

// Modify re-arms fd with a new interest set.
func (r *linuxReactor) Modify(fd int, tok api.Token, interest api.Interest) error {
	ev := epollEvent(tok, interest)
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return errors.Wrapf(err, "epoll ctl mod fd=%d", fd)
	}
	return nil
}

// Deregister removes fd from the epoll interest list.
func (r *linuxReactor) Deregister(fd int) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return errors.Wrapf(err, "epoll ctl del fd=%d", fd)
	}
	return nil
}

// Wait blocks for readiness and translates raw epoll events.
func (r *linuxReactor) Wait(events []api.Event, timeoutMs int) (int, error) {
	if len(events) == 0 {
		return 0, api.ErrInvalidArgument
	}
	if cap(r.raw) < len(events) {
		r.raw = make([]unix.EpollEvent, len(events))
	}
	raw := r.raw[:len(events)]
	if timeoutMs < 0 {
		timeoutMs = -1
	}

	n, err := unix.EpollWait(r.epfd, raw, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		return 0, errors.Wrap(err, "epoll wait")
	}
	for i := 0; i < n; i++ {
		events[i] = api.Event{
			Token: eventToken(&raw[i]),
			Kind:  eventKind(raw[i].Events),
		}
	}
	return n, nil
}

// Wake bumps the eventfd counter so a blocked Wait returns WakeToken.
func (r *linuxReactor) Wake() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return api.ErrReactorClosed
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(r.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return errors.Wrap(err, "eventfd write")
	}
	return nil
}

// ResetWake drains the eventfd counter.
func (r *linuxReactor) ResetWake() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return api.ErrReactorClosed
	}
	var buf [8]byte
	if _, err := unix.Read(r.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return errors.Wrap(err, "eventfd read")
	}
	return nil
}

// Close closes the eventfd and the epoll instance. Later Wake calls
// return api.ErrReactorClosed.
func (r *linuxReactor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	werr := unix.Close(r.wakefd)
	if err := unix.Close(r.epfd); err != nil {
		return errors.Wrap(err, "epoll close")
	}
	return errors.Wrap(werr, "eventfd close")
}

// epollEvent encodes the token into the 64-bit epoll data word:
// Fd carries the low half, Pad the high half.
func epollEvent(tok api.Token, interest api.Interest) unix.EpollEvent {
	var mask uint32 = unix.EPOLLET
	if interest&api.InterestRead != 0 {
		mask |= unix.EPOLLIN
	}
	if interest&api.InterestWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	return unix.EpollEvent{
		Events: mask,
		Fd:     int32(uint32(tok)),
		Pad:    int32(uint32(tok >> 32)),
	}
}

func eventToken(ev *unix.EpollEvent) api.Token {
	return api.Token(uint64(uint32(ev.Pad))<<32 | uint64(uint32(ev.Fd)))
}

func eventKind(mask uint32) api.EventKind {
	var kind api.EventKind
	if mask&unix.EPOLLIN != 0 {
		kind |= api.EventRead
	}
	if mask&unix.EPOLLOUT != 0 {
		kind |= api.EventWrite
	}
	if mask&unix.EPOLLERR != 0 {
		kind |= api.EventError
	}
	if mask&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		kind |= api.EventHangup
	}
	return kind
}
