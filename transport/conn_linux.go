// Package transport implements the raw-socket collaborator that the
// pppoe package's wire-format codec deliberately does not: binding to
// an Ethernet interface, sending and receiving discovery or session
// frames, and integrating with the Go runtime's poller for
// non-blocking I/O.
package transport

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Conn is a non-blocking AF_PACKET socket bound to one network
// interface and one EtherType.
type Conn struct {
	iface *net.Interface
	file  *os.File
	rc    syscall.RawConn
}

func netByteOrder(etherType uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, etherType)
	return uint16(b[1])<<8 + uint16(b[0])
}

func newRawSocket(protocol int) (fd int, err error) {
	// raw socket since we want to read/write link-level packets
	fd, err = unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, protocol)
	if err != nil {
		return -1, fmt.Errorf("socket: %v", err)
	}

	// make the socket nonblocking so we can use it with the runtime poller
	if err = unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("failed to set socket nonblocking: %v", err)
	}

	// set the socket CLOEXEC to prevent passing it to child processes
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	if err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("fcntl(F_GETFD): %v", err)
	}
	if _, err = unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags|unix.FD_CLOEXEC); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("fcntl(F_SETFD, FD_CLOEXEC): %v", err)
	}

	// allow broadcast, needed to send PADI
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("setsockopt(SO_BROADCAST): %v", err)
	}

	return fd, nil
}

// NewConn opens a raw socket on ifName bound to etherType (one of
// pppoe.EtherTypeDiscovery or pppoe.EtherTypeSession).
func NewConn(ifName string, etherType uint16) (*Conn, error) {
	iface, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain details of interface %q: %v", ifName, err)
	}

	proto := netByteOrder(etherType)
	fd, err := newRawSocket(int(proto))
	if err != nil {
		return nil, fmt.Errorf("failed to create raw socket: %v", err)
	}

	sa := unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind socket: %v", err)
	}

	// wrap the fd in an *os.File so reads and writes integrate with the
	// Go runtime's netpoller instead of busy-polling
	file := os.NewFile(uintptr(fd), ifName)
	rc, err := file.SyscallConn()
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Conn{iface: iface, file: file, rc: rc}, nil
}

// Close releases the underlying socket.
func (c *Conn) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

// Send writes b to the interface.
func (c *Conn) Send(b []byte) (int, error) {
	return c.file.Write(b)
}

// Recv blocks until a frame is available on the interface, or until a
// read deadline set with SetReadDeadline elapses.
func (c *Conn) Recv(b []byte) (int, error) {
	return c.file.Read(b)
}

// SetReadDeadline sets the deadline for future Recv calls.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.file.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future Send calls.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.file.SetWriteDeadline(t)
}

// HWAddr returns the bound interface's hardware address.
func (c *Conn) HWAddr() (addr [6]byte) {
	if len(c.iface.HardwareAddr) >= 6 {
		copy(addr[:], c.iface.HardwareAddr[:6])
	}
	return addr
}
