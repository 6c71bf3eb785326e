package version

// Version contains the walletbuilder version.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/walletbuilder/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return "walletbuilder " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
