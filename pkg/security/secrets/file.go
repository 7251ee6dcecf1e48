package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider loads secrets from individual files in a directory.
//
// Each secret is one file, as with Kubernetes and Docker secret mounts. A
// secret named OPENAI_API_KEY is read from <dir>/OPENAI_API_KEY, falling back
// to <dir>/openai-api-key. Files must be 0600 or 0400.
//
// With Watch set, changes in the directory drop the cache so rotated keys
// are picked up without a restart.
type FileProvider struct {
	BasePath string
	Watch    bool

	mu      sync.RWMutex
	cache   map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	closeMu sync.Once
}

// NewFileProvider creates a file-based secret provider rooted at basePath.
func NewFileProvider(basePath string, watch bool) (*FileProvider, error) {
	p := &FileProvider{
		BasePath: basePath,
		Watch:    watch,
		cache:    make(map[string]string),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", basePath)
	}

	if !watch {
		close(p.doneCh)
		slog.Info("file secret provider started", "path", basePath, "watch", false)
		return p, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(basePath); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
	}

	p.watcher = watcher
	go p.watchLoop()

	slog.Info("file secret provider started", "path", basePath, "watch", true)
	return p, nil
}

// GetSecret reads the secret file for name, caching the trimmed value.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	p.mu.RLock()
	value, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return value, nil
	}

	var lastErr error
	for _, candidate := range fileCandidates(name) {
		value, err := p.readSecret(candidate)
		if err == nil {
			p.mu.Lock()
			p.cache[name] = value
			p.mu.Unlock()
			return value, nil
		}
		lastErr = err
		if !errors.Is(err, ErrSecretNotFound) {
			return "", err
		}
	}

	return "", lastErr
}

func (p *FileProvider) readSecret(filename string) (string, error) {
	path, err := p.resolve(filename)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (file)", ErrSecretNotFound, filename)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", filename)
	}

	mode := info.Mode().Perm()
	if mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, mode)
	}

	// #nosec G304 - path is confined to BasePath by resolve
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%w: %s (empty file)", ErrSecretNotFound, filename)
	}
	return value, nil
}

// resolve joins filename to BasePath and rejects anything escaping it.
func (p *FileProvider) resolve(filename string) (string, error) {
	absBase, err := filepath.Abs(p.BasePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve secrets directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(p.BasePath, filename))
	if err != nil {
		return "", fmt.Errorf("failed to resolve secret path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid secret name %q: directory traversal detected", filename)
	}
	return absPath, nil
}

// Provider returns the provider name.
func (p *FileProvider) Provider() string {
	return "file"
}

// Supports reports whether a regular file exists for name.
func (p *FileProvider) Supports(name string) bool {
	for _, candidate := range fileCandidates(name) {
		path, err := p.resolve(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// Refresh clears the cache so secrets are re-read from disk.
func (p *FileProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	slog.Debug("refreshing file secret cache", "path", p.BasePath)
	p.cache = make(map[string]string)
	return nil
}

// Close stops the watcher. It is safe to call more than once.
func (p *FileProvider) Close() error {
	var err error
	p.closeMu.Do(func() {
		if p.watcher == nil {
			return
		}
		close(p.stopCh)
		err = p.watcher.Close()
		<-p.doneCh
	})
	return err
}

func (p *FileProvider) watchLoop() {
	defer close(p.doneCh)

	const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&reloadOps == 0 {
				continue
			}

			slog.Debug("secret file changed",
				"file", filepath.Base(event.Name),
				"op", event.Op.String(),
			)
			if err := p.Refresh(context.Background()); err != nil {
				slog.Error("failed to refresh secrets after file change", "error", err)
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("secret file watcher error", "error", err)

		case <-p.stopCh:
			return
		}
	}
}

// fileCandidates lists the filenames tried for name: as given, then
// lowercase with hyphens.
func fileCandidates(name string) []string {
	alt := strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	if alt == name {
		return []string{name}
	}
	return []string{name, alt}
}
