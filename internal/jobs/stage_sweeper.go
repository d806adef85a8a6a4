package jobs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// StageSweeper removes staging directories a crashed submission left behind.
// Live submissions always finish or clean up well inside the age threshold.
type StageSweeper struct {
	mount    string
	maxAge   time.Duration
	schedule string
}

var _ CronJob = (*StageSweeper)(nil)

func NewStageSweeper(mount string, maxAge time.Duration, schedule string) *StageSweeper {
	return &StageSweeper{
		mount:    mount,
		maxAge:   maxAge,
		schedule: schedule,
	}
}

func (s *StageSweeper) Schedule() string {
	return s.schedule
}

func (s *StageSweeper) Run() {
	entries, err := os.ReadDir(s.mount)
	if err != nil {
		logrus.Errorf("stage sweep: reading %s: %v", s.mount, err)
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		dir := filepath.Join(s.mount, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			logrus.Errorf("stage sweep: removing %s: %v", dir, err)
			continue
		}
		logrus.Infof("stage sweep: removed stale staging dir %s", dir)
	}
}
