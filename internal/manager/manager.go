package manager

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type TrackedCmd struct {
	Cmd    *exec.Cmd
	Cancel context.CancelFunc
}

type AppManager struct {
	mu       sync.Mutex
	cmds     []TrackedCmd
	stops    []chan struct{}
	wg       sync.WaitGroup
	started  bool
	listener net.Listener
	daemon   *Daemon

	// Logger is replaced by `brux start` before the server comes up.
	Logger *zap.Logger
	// ConfigFile overrides ConfigPath.
	ConfigFile string

	socketPath string
}

var Manage = &AppManager{Logger: zap.NewNop()}

// exit is swapped in tests so STOP does not end the test binary.
var exit = os.Exit

func getSocketPath() string {
	var baseDir string
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		baseDir = runtimeDir
	} else {
		baseDir = os.TempDir()
	}

	socketDir := filepath.Join(baseDir, "brux")
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return filepath.Join(os.TempDir(), "brux-socket.sock")
	}
	return filepath.Join(socketDir, "socket.sock")
}

func (m *AppManager) SocketPath() string {
	if m.socketPath != "" {
		return m.socketPath
	}
	return getSocketPath()
}

func (m *AppManager) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func NewCmd(command string, args ...string) (*exec.Cmd, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, command, args...)

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd, cancel
}

func (m *AppManager) StartTrackedCmd(cmd *exec.Cmd, cancel context.CancelFunc) *exec.Cmd {
	if err := cmd.Start(); err != nil {
		cancel()
		m.logger().Error("failed to start process", zap.String("cmd", cmd.Args[0]), zap.Error(err))
		return nil
	}

	m.mu.Lock()
	m.cmds = append(m.cmds, TrackedCmd{Cmd: cmd, Cancel: cancel})
	m.mu.Unlock()

	return cmd
}

// StartIPCServer accepts connections until StopAll closes the listener.
func (m *AppManager) StartIPCServer() error {
	socketPath := m.SocketPath()
	_ = os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer listener.Close()

	m.mu.Lock()
	m.listener = listener
	m.mu.Unlock()

	m.logger().Info("ipc server listening", zap.String("socket", socketPath))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}
		go m.handleConnection(conn)
	}
}

func (m *AppManager) handleConnection(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return
	}

	command := strings.TrimSpace(line)
	verb, _, _ := strings.Cut(command, " ")

	switch strings.ToUpper(verb) {

	case "STOP":
		m.logger().Info("received STOP via ipc, shutting down")
		_, _ = conn.Write([]byte("OK: Shutting down."))

		// Close immediately so client doesn't hang
		_ = conn.Close()

		go func() {
			m.StopAll()
			time.Sleep(200 * time.Millisecond)
			exit(0)
		}()

	case "STATUS":
		m.mu.Lock()
		d := m.daemon
		m.mu.Unlock()
		if d == nil {
			_, _ = conn.Write([]byte("OK: running, not started"))
			return
		}
		_, _ = conn.Write([]byte("OK: " + d.summary()))

	case "START":
		m.mu.Lock()
		if m.started {
			m.mu.Unlock()
			_, _ = conn.Write([]byte("OK: Already started"))
			return
		}
		m.started = true
		m.mu.Unlock()

		if err := m.Start(); err != nil {
			m.mu.Lock()
			m.started = false
			m.mu.Unlock()
			_, _ = conn.Write([]byte(reply("", err)))
			return
		}
		_, _ = conn.Write([]byte("OK: Started"))

	default:
		m.mu.Lock()
		d := m.daemon
		m.mu.Unlock()
		_, _ = conn.Write([]byte(d.Handle(command)))
	}
}

// Start loads the config, builds the daemon and launches its watchers.
func (m *AppManager) Start() error {
	log := m.logger()
	log.Info("initializing daemon")

	v, err := Config.Load(m.ConfigFile)
	if err != nil {
		log.Warn("config unreadable, using defaults", zap.String("path", v.ConfigFileUsed()), zap.Error(err))
	}

	d, err := NewDaemon(Config.Settings(), log)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.daemon = d
	m.mu.Unlock()

	Config.Watch(d.Reconfigure)

	for _, w := range d.Watchers() {
		m.StartWatcher(w)
	}
	d.openWidgets()
	return nil
}

func (m *AppManager) StartWatcher(f func(stop <-chan struct{})) {
	stop := make(chan struct{})
	m.mu.Lock()
	m.stops = append(m.stops, stop)
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						m.logger().Error("watcher panic", zap.Any("panic", r))
					}
				}()
				f(stop)
			}()

			select {
			case <-stop:
				return
			case <-time.After(2 * time.Second):
				m.logger().Info("restarting watcher")
			}
		}
	}()
}

func (m *AppManager) StopAll() {
	m.mu.Lock()
	cmds := m.cmds
	stops := m.stops
	listener := m.listener
	m.cmds = nil
	m.stops = nil
	m.listener = nil
	m.mu.Unlock()

	for _, s := range stops {
		close(s)
	}
	m.wg.Wait()

	if listener != nil {
		_ = listener.Close()
	}

	for _, t := range cmds {
		if t.Cancel != nil {
			t.Cancel()
		}
		if t.Cmd == nil || t.Cmd.Process == nil {
			continue
		}

		pid := t.Cmd.Process.Pid
		pgid, err := syscall.Getpgid(pid)

		if err == nil {
			_ = syscall.Kill(-pgid, syscall.SIGTERM)

			time.Sleep(50 * time.Millisecond)
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		}

		_ = t.Cmd.Process.Kill()
		_ = t.Cmd.Wait()
	}

	_ = m.logger().Sync()
}

func (m *AppManager) ConnectIPC() (net.Conn, error) {
	return net.DialTimeout("unix", m.SocketPath(), 500*time.Millisecond)
}

// SendIPCCommand sends one command line and returns the full reply.
func (m *AppManager) SendIPCCommand(cmd string) (string, error) {
	conn, err := m.ConnectIPC()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}

	return string(resp), nil
}
