package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jroosing/minidns/internal/dns"
	"github.com/jroosing/minidns/internal/pool"
)

// readPollInterval bounds how long a read blocks before ctx is rechecked.
const readPollInterval = time.Second

// bufferPool reduces allocations for incoming UDP packets.
// Each buffer is one byte larger than the largest accepted query so
// oversized datagrams are seen as such instead of silently cut.
var bufferPool = pool.NewBuffers(dns.MaxIncomingMessageSize + 1)

// UDPServer handles DNS queries over UDP.
//
// Features:
//   - Buffer pooling to reduce GC pressure under load
//   - Semaphore-based concurrency limiting
//   - Graceful shutdown with timeout
type UDPServer struct {
	Logger         *slog.Logger  // Optional logger
	Handler        *QueryHandler // Query processor
	MaxConcurrency int           // Maximum concurrent request handlers

	mu   sync.Mutex
	conn *net.UDPConn   // The UDP socket
	wg   sync.WaitGroup // Tracks in-flight requests
	sem  chan struct{}  // Concurrency semaphore
}

// Run starts the UDP server, listening on the given address.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	conn, err := listenUDP(ctx, addr)
	if err != nil {
		return err
	}
	return s.RunOnConn(ctx, conn)
}

// listenUDP opens a UDP socket with SO_REUSEADDR so a restarted server can
// rebind immediately.
func listenUDP(ctx context.Context, addr string) (*net.UDPConn, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, errors.New("udp server: listener is not a UDP socket")
	}
	return conn, nil
}

// RunOnConn runs the server on an existing UDP connection.
// This is useful for testing and when the caller manages the socket.
//
// Request processing flow:
//  1. Read packet from socket (with a short deadline for shutdown checks)
//  2. Acquire semaphore slot (drop if at max concurrency)
//  3. Process request in goroutine
//  4. Send response, if any
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	maxConc := s.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 1
	}
	s.sem = make(chan struct{}, maxConc)

	for ctx.Err() == nil {
		packet, remote, err := s.receivePacket(conn)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}
		if packet == nil {
			continue
		}

		if !s.tryAcquireSemaphore() {
			if s.Logger != nil {
				s.Logger.Debug("udp drop: at max concurrency", "src", remote.String())
			}
			continue
		}

		s.wg.Add(1)
		go s.handleRequest(ctx, conn, packet, remote)
	}
	return nil
}

// receivePacket reads a UDP packet using a pooled buffer.
// A nil packet with a nil error means the read timed out.
func (s *UDPServer) receivePacket(conn *net.UDPConn) ([]byte, *net.UDPAddr, error) {
	bufPtr := bufferPool.Get()
	defer bufferPool.Put(bufPtr)
	buf := *bufPtr

	_ = conn.SetReadDeadline(time.Now().Add(readPollInterval))
	n, remote, err := conn.ReadFromUDP(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if remote == nil {
		return nil, nil, nil
	}

	// Copy data out of pooled buffer
	data := make([]byte, n)
	copy(data, buf[:n])
	return data, remote, nil
}

// tryAcquireSemaphore attempts to acquire a concurrency slot.
// Returns false if the server is at maximum concurrency.
func (s *UDPServer) tryAcquireSemaphore() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// handleRequest processes a single DNS request.
func (s *UDPServer) handleRequest(ctx context.Context, conn *net.UDPConn, payload []byte, peer *net.UDPAddr) {
	defer s.wg.Done()
	defer func() { <-s.sem }()

	if s.Handler == nil {
		return
	}

	res := s.Handler.Handle(ctx, "udp", peer.String(), payload)
	if len(res.ResponseBytes) == 0 {
		return
	}
	if _, err := conn.WriteToUDP(res.ResponseBytes, peer); err != nil && s.Logger != nil {
		s.Logger.Debug("udp write failed", "dst", peer.String(), "err", err)
	}
}

// LocalAddr returns the bound address once the server is running.
func (s *UDPServer) LocalAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Stop gracefully shuts down the UDP server.
// Waits up to the specified timeout for in-flight requests to complete.
// Returns an error if the timeout is exceeded.
func (s *UDPServer) Stop(timeout time.Duration) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.Close()

	if timeout <= 0 {
		s.wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("udp server: timeout waiting for in-flight requests")
	}
}
