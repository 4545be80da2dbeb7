package memory

import (
	"fmt"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"
)

var logUnmapped atomic.Bool

func init() {
	logUnmapped.Store(true)
}

// SetLogUnmapped toggles, for the whole process, the logging of accesses
// that land on unmapped addresses. Each space must also have its own
// unmapped logging enabled.
func SetLogUnmapped(enable bool) {
	logUnmapped.Store(enable)
}

// LogUnmapped reports the process-wide unmapped logging toggle.
func LogUnmapped() bool {
	return logUnmapped.Load()
}

// NewLogger returns the default logger, at debug level when verbose.
func NewLogger(verbose bool) *log.Logger {
	cfg := log.DefaultConfig()
	if verbose {
		cfg.Level = log.DebugLevel
	}
	return log.NewWithConfig(cfg)
}

func (sp *spaceCore) logUnmappedRead(address uint32, mask uint64) {
	if !sp.logUnmap || !logUnmapped.Load() {
		return
	}

	sp.manager.logger.Warn(f("unmapped %v memory read", sp.config.Name),
		log.String("device", sp.device.Tag()),
		log.String("address", sp.config.FormatAddr(address)),
		log.String("mask", fmt.Sprintf("%0*X", sp.config.DataWidth/4, mask)))
}

func (sp *spaceCore) logUnmappedWrite(address uint32, data uint64, mask uint64) {
	if !sp.logUnmap || !logUnmapped.Load() {
		return
	}

	sp.manager.logger.Warn(f("unmapped %v memory write", sp.config.Name),
		log.String("device", sp.device.Tag()),
		log.String("address", sp.config.FormatAddr(address)),
		log.String("data", fmt.Sprintf("%0*X", sp.config.DataWidth/4, data)),
		log.String("mask", fmt.Sprintf("%0*X", sp.config.DataWidth/4, mask)))
}
