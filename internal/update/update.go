// Package update performs over the air firmware updates: a signed
// binary is downloaded, verified and swapped in place of the running
// executable, then the service restarts into the new version.
package update

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/jedisct1/go-minisign"

	"accontrol/internal/events"
)

const downloadTimeout = 10 * time.Minute

// Manager checks offered versions and installs updates.
type Manager struct {
	currentVersion string
	exePath        string
	pubKey         minisign.PublicKey
	httpClient     *http.Client
	persist        func(version string) error
	restart        func() error
	events         *events.Store
	logger         *log.Logger

	mu sync.Mutex
}

// NewManager creates an update manager. persist records the installed
// version before restart; restart relaunches the service and is called
// after a short delay so in flight traffic can drain.
func NewManager(currentVersion, exePath string, persist func(string) error, restart func() error, ev *events.Store, logger *log.Logger) (*Manager, error) {
	pubKey, err := ParsePublicKey(PublicKeyStr)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Manager{
		currentVersion: currentVersion,
		exePath:        exePath,
		pubKey:         pubKey,
		httpClient:     &http.Client{Timeout: downloadTimeout},
		persist:        persist,
		restart:        restart,
		events:         ev,
		logger:         logger,
	}, nil
}

// CurrentVersion returns the running firmware version.
func (m *Manager) CurrentVersion() string {
	return m.currentVersion
}

// Apply downloads the binary at url, verifies its detached minisign
// signature fetched from url + ".minisig", installs it over the
// running executable and restarts the service. The offered version
// must be strictly newer than the running one.
func (m *Manager) Apply(ctx context.Context, url, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if IsDev(m.currentVersion) {
		return fmt.Errorf("cannot update dev build")
	}

	newer, err := IsNewer(m.currentVersion, version)
	if err != nil {
		return err
	}
	if !newer {
		return fmt.Errorf("offered version %s is not newer than %s", version, m.currentVersion)
	}

	m.logger.Printf("[OTA] Updating %s -> %s from %s", m.currentVersion, version, url)

	updateDir := filepath.Join(filepath.Dir(m.exePath), ".update")
	os.RemoveAll(updateDir)
	if err := os.MkdirAll(updateDir, 0755); err != nil {
		return fmt.Errorf("create update directory: %w", err)
	}
	defer os.RemoveAll(updateDir)

	binPath := filepath.Join(updateDir, "accontrold-"+version)
	err = downloadFileWithProgress(ctx, m.httpClient, url, binPath, func(downloaded, total int64) {
		if downloaded == total {
			m.logger.Printf("[OTA] Downloaded %s", formatBytes(total))
		}
	})
	if err != nil {
		return fmt.Errorf("download binary: %w", err)
	}

	sigPath := binPath + ".minisig"
	if err := downloadFile(ctx, m.httpClient, url+".minisig", sigPath); err != nil {
		return fmt.Errorf("download signature: %w", err)
	}

	if err := VerifySignature(binPath, sigPath, m.pubKey); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}

	if err := m.install(binPath); err != nil {
		return err
	}

	if err := m.persist(version); err != nil {
		return fmt.Errorf("record installed version: %w", err)
	}

	m.events.Add(events.EventUpdate, true, fmt.Sprintf("Installed firmware %s", version))
	m.logger.Printf("[OTA] Firmware %s installed, restarting", version)

	time.AfterFunc(1*time.Second, func() {
		if err := m.restart(); err != nil {
			m.logger.Printf("[OTA] Restart failed: %v", err)
		}
	})
	return nil
}

// install swaps the verified binary in place of the running one. The
// previous binary is kept beside it and restored when the swap fails.
func (m *Manager) install(newBinary string) error {
	backupPath := m.exePath + ".bak"
	if err := copyFile(m.exePath, backupPath); err != nil {
		return fmt.Errorf("back up binary: %w", err)
	}

	if err := copyFile(newBinary, m.exePath); err != nil {
		if rbErr := copyFile(backupPath, m.exePath); rbErr != nil {
			return fmt.Errorf("replace binary: %w, rollback also failed: %v", err, rbErr)
		}
		return fmt.Errorf("replace binary (rolled back): %w", err)
	}
	if err := os.Chmod(m.exePath, 0755); err != nil {
		return fmt.Errorf("chmod binary: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// RestartService restarts the accontrold systemd unit.
func RestartService() error {
	return exec.Command("systemctl", "restart", "accontrold").Run()
}
