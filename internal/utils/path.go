package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// dataFiles are the names a data directory may carry; any one of them
// marks the directory as usable.
var dataFiles = []string{"wordnet.toml", "phonetics.toml", "emotions.toml", "contexts.toml"}

// PathResolver resolves config and data locations relative to the
// running binary.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     platformConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "wordcraft")
		}
		return filepath.Join(homeDir, ".config", "wordcraft")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordcraft")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordcraft")
	case "darwin":
		return filepath.Join(homeDir, ".config", "wordcraft")
	default:
		return filepath.Join(homeDir, ".wordcraft")
	}
}

// GetDataDir resolves an override data directory. An empty request
// means "use the embedded data" and yields "".
// Candidates are tried in order: absolute path, next to the
// executable, the working directory, then <config>/data.
func (pr *PathResolver) GetDataDir(requested string) string {
	if requested == "" {
		return ""
	}
	var candidates []string
	if filepath.IsAbs(requested) {
		candidates = append(candidates, requested)
	}
	candidates = append(candidates, filepath.Join(pr.executableDir, requested))
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, requested))
	}
	candidates = append(candidates, filepath.Join(pr.configDir, "data"))

	for _, path := range candidates {
		if isValidDataDir(path) {
			log.Debugf("Found valid data directory: %s", path)
			return path
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	log.Warnf("No data files found for %q, using embedded data", requested)
	return ""
}

// DataFile returns dir/name when it exists, else "".
func DataFile(dir, name string) string {
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, name)
	if FileExists(path) {
		return path
	}
	return ""
}

func isValidDataDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	for _, name := range dataFiles {
		if FileExists(filepath.Join(path, name)) {
			return true
		}
	}
	return false
}

// ResolveRelativePath resolves a path relative to the config directory.
func (pr *PathResolver) ResolveRelativePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(pr.configDir, path)
}

// RuntimeInfo returns debug information about the running process.
func RuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()
	info := map[string]string{
		"current_dir": cwd,
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
		"go":          runtime.Version(),
	}
	if execDir, err := GetExecutableDir(); err == nil {
		info["executable_dir"] = execDir
	}
	for _, envVar := range []string{"XDG_CONFIG_HOME", "WORDCRAFT_RERANKER_ARTIFACT", "WORDCRAFT_DISABLE_RERANKER"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
