package app

import "fmt"

// Build identity, overridden through ldflags by the release pipeline:
//
//	-X github.com/fernwood-lab/studyflow-backend/internal/app.Version=0.4.0
//	-X github.com/fernwood-lab/studyflow-backend/internal/app.Commit=4febc2a
//	-X github.com/fernwood-lab/studyflow-backend/internal/app.BuildTime=2026-08-25T10:00:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion renders the build identity for the startup log and the
// /health payload.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
