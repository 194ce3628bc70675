package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	threatSnapshotFile   = "threats.json"
	metricsSnapshotFile  = "security_metrics.json"
	criticalSnapshotFile = "critical_events.json"
)

// writeSnapshot persists one JSON document, replacing the previous copy
// atomically via a rename. Missing-directory and permission errors are
// swallowed; anything else is logged.
func writeSnapshot(logger *logrus.Logger, dir, name string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.WithError(err).WithField("snapshot", name).Error("failed to marshal snapshot")
		return
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		if !os.IsPermission(err) {
			logger.WithError(err).WithField("snapshot", name).Error("failed to create snapshot directory")
		}
		return
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		if !os.IsNotExist(err) && !os.IsPermission(err) {
			logger.WithError(err).WithField("snapshot", name).Error("failed to write snapshot")
		}
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		if !os.IsNotExist(err) && !os.IsPermission(err) {
			logger.WithError(err).WithField("snapshot", name).Error("failed to replace snapshot")
		}
	}
}
