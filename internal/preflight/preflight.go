package preflight

import (
	"atenea/internal/config"
	"atenea/internal/modelargs"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for every configured model plus the
// orchestrator-owned directories.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir)}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	sad := modelargs.SadTalker
	results = append(results,
		CheckModelInstall("SadTalker install", cfg.SadTalker.Root, cfg.SadTalker.Entry, sad.InstallRemedy()),
		CheckCheckpoints("SadTalker checkpoints", cfg.SadTalker.CheckpointDir, sad.CheckpointRemedy()),
	)

	hallo := modelargs.Hallo2
	results = append(results,
		CheckModelInstall("Hallo2 install", cfg.Hallo2.Root, cfg.Hallo2.Entry, hallo.InstallRemedy()),
		CheckCheckpoints("Hallo2 checkpoints", cfg.Hallo2.CheckpointDir, hallo.CheckpointRemedy()),
	)
	return results
}
