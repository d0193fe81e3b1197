package brownian

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash identifies the physical parameters of a run, excluding SimID and
// EngineID, so repeats of the same experiment share a prefix.
func (s *Simulator) Hash(cfg Config) string {
	numeric := fmt.Sprintf("t_step=%.3e, t_max=%.2f, np=%d, conc=%.2e",
		cfg.TStep, cfg.TMax, s.pop.Len(), Concentration(s.pop.Len(), s.box))
	parts := []string{numeric, s.pop.ShortName(), s.box.String(), s.psf.Name()}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// CompactName is the run identifier used for storage directories, e.g.
// "1c06e2_P20_D1.2e-11_33pM_step0.5us_t_max0.3s_ID0-0".
func (s *Simulator) CompactName(cfg Config) string {
	name := fmt.Sprintf("%s_%dpM_step%.1fus",
		s.pop.ShortName(), int(ConcentrationPM(s.pop.Len(), s.box)), cfg.TStep*1e6)
	name = s.Hash(cfg)[:6] + "_" + name
	name += fmt.Sprintf("_t_max%.1fs", cfg.TMax)
	name += fmt.Sprintf("_ID%d-%d", cfg.SimID, cfg.EngineID)
	return name
}
