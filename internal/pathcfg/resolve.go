package pathcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Roots holds the three resolved, validated, absolute root directories
// every downstream component receives.
type Roots struct {
	MemoriesRoot string
	TasksRoot    string
	DataRoot     string
}

// Resolve determines MemoriesRoot/TasksRoot/DataRoot using a precedence
// chain of environment overrides, then a settings file, then defaults.
func Resolve(cwd string) (Roots, error) {
	v := viper.New()
	v.SetEnvPrefix("COREVAULT")
	v.AutomaticEnv()

	v.SetDefault("data_root", filepath.Join(cwd, ".corevault"))
	v.SetDefault("memories_root", filepath.Join(cwd, ".corevault", "memories"))
	v.SetDefault("tasks_root", filepath.Join(cwd, ".corevault", "tasks"))

	settingsPath := filepath.Join(cwd, ".corevault", "path-settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		v.SetConfigFile(settingsPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Roots{}, fmt.Errorf("pathcfg: reading %s: %w", settingsPath, err)
		}
	}

	dataRoot, err := absValidated(v.GetString("data_root"))
	if err != nil {
		return Roots{}, err
	}
	memoriesRoot, err := absValidated(v.GetString("memories_root"))
	if err != nil {
		return Roots{}, err
	}
	tasksRoot, err := absValidated(v.GetString("tasks_root"))
	if err != nil {
		return Roots{}, err
	}

	for _, dir := range []string{dataRoot, memoriesRoot, tasksRoot} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return Roots{}, fmt.Errorf("pathcfg: creating %s: %w", dir, err)
		}
	}

	return Roots{MemoriesRoot: memoriesRoot, TasksRoot: tasksRoot, DataRoot: dataRoot}, nil
}

func absValidated(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return filepath.Clean(abs), nil
}

// ProjectDir returns the sandboxed per-project subdirectory of root.
func ProjectDir(root, project string) (string, error) {
	return SandboxJoin(root, SanitizeProject(project))
}
