package config

import (
	"git.home.luguber.info/inful/walletbuilder/internal/foundation"
)

// Task selects which pipeline(s) an invocation runs.
type Task string

const (
	TaskBuild Task = "build"
	TaskWatch Task = "watch"
	TaskPack  Task = "pack"
)

// Target is the distribution platform selected for a build.
type Target string

const (
	TargetWeb      Target = "web"
	TargetChromium Target = "chromium"
	TargetFirefox  Target = "firefox"
	TargetSafari   Target = "safari"
)

// BuildType is the internal build variant derived from a Target.
type BuildType string

const (
	BuildTypeWeb BuildType = "web"
	BuildTypeV3  BuildType = "v3"
	BuildTypeV2  BuildType = "v2"
)

var taskNormalizer = foundation.NewNormalizer(
	foundation.Choice[Task]{Name: "build", Value: TaskBuild},
	foundation.Choice[Task]{Name: "watch", Value: TaskWatch},
	foundation.Choice[Task]{Name: "pack", Value: TaskPack},
)

var buildTargets = foundation.NewNormalizer(
	foundation.Choice[Target]{Name: "web", Value: TargetWeb},
	foundation.Choice[Target]{Name: "chromium", Value: TargetChromium},
	foundation.Choice[Target]{Name: "firefox", Value: TargetFirefox},
	foundation.Choice[Target]{Name: "safari", Value: TargetSafari},
)

// Safari packaging is not supported; web has nothing to zip.
var packTargets = foundation.NewNormalizer(
	foundation.Choice[Target]{Name: "chromium", Value: TargetChromium},
	foundation.Choice[Target]{Name: "firefox", Value: TargetFirefox},
)

// Tasks returns every recognized task in declaration order.
func Tasks() []Task { return taskNormalizer.Values() }

// TaskNames returns the recognized task names, comma separated.
func TaskNames() string { return taskNormalizer.Names() }

// ParseTask resolves a task name.
func ParseTask(raw string) (Task, bool) { return taskNormalizer.Normalize(raw) }

func targetsFor(task Task) *foundation.Normalizer[Target] {
	if task == TaskPack {
		return packTargets
	}
	return buildTargets
}

// TargetsFor returns the targets accepted by task.
func TargetsFor(task Task) []Target { return targetsFor(task).Values() }

// TargetNames returns the targets accepted by task, comma separated.
func TargetNames(task Task) string { return targetsFor(task).Names() }

// ParseTarget resolves a target name against the enumeration valid for task.
func ParseTarget(task Task, raw string) (Target, bool) {
	return targetsFor(task).Normalize(raw)
}

// BuildType maps the target to its build variant. The mapping is total.
func (t Target) BuildType() BuildType {
	switch t {
	case TargetChromium:
		return BuildTypeV3
	case TargetFirefox, TargetSafari:
		return BuildTypeV2
	default:
		return BuildTypeWeb
	}
}

func (t Target) String() string { return string(t) }

// IsExtension reports whether the build variant produces a browser extension.
func (b BuildType) IsExtension() bool { return b != BuildTypeWeb }

// OutputDir is the fixed, project-relative output directory for the build variant.
// Directories of distinct variants never overlap.
func (b BuildType) OutputDir() string {
	switch b {
	case BuildTypeV3:
		return "dist/v3"
	case BuildTypeV2:
		return "dist/v2"
	default:
		return "docs"
	}
}

// ManifestTemplate is the template file name under build/manifest, empty for web.
func (b BuildType) ManifestTemplate() string {
	switch b {
	case BuildTypeV3:
		return "v3.json"
	case BuildTypeV2:
		return "v2.json"
	default:
		return ""
	}
}

func (b BuildType) String() string { return string(b) }
