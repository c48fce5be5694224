package permanent

import (
	"os"

	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/metrics"
)

// backupAndRemove retires a live config file by renaming it to a ".old"
// sibling. If the rename fails the file is deleted outright and the failure
// logged: losing the backup is preferred over leaving a stale definition
// that would resurface on the next load. Callers must not assume a backup
// exists afterwards.
func backupAndRemove(name string) {
	if err := os.Rename(name, name+".old"); err != nil {
		logging.Error("Backup of file failed", "file", name, "error", err)
		metrics.Get().BackupFailures.Inc()
		if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
			logging.Error("Removal of file failed", "file", name, "error", err)
		}
	}
}
