// Package files inspects the data directory holding the marketing CSV
// exports. The dashboard uses it to show which input files the loader
// will read and to flag configured files that are missing on disk.
package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"adpulse/internal/config"
)

// File roles in the data directory.
const (
	RoleChannel  = "channel"
	RoleBusiness = "business"
	RoleExtra    = "extra"
)

// FileInfo describes one CSV in the data directory.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Role    string    `json:"role"`
	Channel string    `json:"channel,omitempty"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery lists the input files the loader is configured to read.
type Discovery struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewDiscovery creates a discovery bound to the configured data dir.
func NewDiscovery(cfg *config.Config, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "file_discovery")),
	}
}

// ListInputs returns every configured input file plus any extra CSVs
// found in the data directory. Configured files that are missing on
// disk are still listed with Exists set to false, so the UI can point
// at the gap before a reload fails.
func (d *Discovery) ListInputs() ([]FileInfo, error) {
	files := make([]FileInfo, 0, len(d.cfg.Data.Channels)+1)
	known := make(map[string]bool)

	for _, channel := range d.cfg.Data.Channels {
		path := d.cfg.ChannelPath(channel)
		info := statFile(path, RoleChannel)
		info.Channel = channel
		files = append(files, info)
		known[filepath.Base(path)] = true
	}

	business := statFile(d.cfg.BusinessPath(), RoleBusiness)
	files = append(files, business)
	known[filepath.Base(d.cfg.BusinessPath())] = true

	extras, err := d.findExtraCSVs(known)
	if err != nil {
		return nil, err
	}
	files = append(files, extras...)

	d.logger.Debug("data directory listed",
		slog.String("dir", d.cfg.Data.Dir),
		slog.Int("file_count", len(files)))

	return files, nil
}

// findExtraCSVs returns CSVs in the data dir that no configuration
// entry claims, sorted by name.
func (d *Discovery) findExtraCSVs(known map[string]bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(d.cfg.Data.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory %s: %w", d.cfg.Data.Dir, err)
	}

	var extras []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || known[name] || !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		extras = append(extras, statFile(filepath.Join(d.cfg.Data.Dir, name), RoleExtra))
	}

	sort.Slice(extras, func(i, j int) bool { return extras[i].Name < extras[j].Name })

	return extras, nil
}

func statFile(path, role string) FileInfo {
	info := FileInfo{
		Name: filepath.Base(path),
		Path: path,
		Role: role,
	}
	if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
		info.Exists = true
		info.Size = stat.Size()
		info.ModTime = stat.ModTime()
	}
	return info
}
