package upgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/sirupsen/logrus"
)

const (
	repoOwner  = "virtualboard"
	repoName   = "yaml4rst"
	binaryName = "yaml4rst"
)

// Result describes the outcome of an upgrade run.
type Result struct {
	Message        string
	CurrentVersion string
	LatestVersion  string
	Upgraded       bool
}

// Upgrader replaces the running yaml4rst binary with the latest GitHub release.
type Upgrader struct {
	client     *github.Client
	httpClient *http.Client
	logger     *logrus.Logger
	executable func() (string, error)
}

// NewUpgrader creates an upgrader talking to the public GitHub API.
func NewUpgrader(logger *logrus.Logger) *Upgrader {
	return &Upgrader{
		client:     github.NewClient(nil),
		httpClient: http.DefaultClient,
		logger:     logger,
		executable: os.Executable,
	}
}

// WithBaseURL points the GitHub client at another API endpoint, e.g. GitHub Enterprise.
func (u *Upgrader) WithBaseURL(base string) (*Upgrader, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.client.BaseURL = parsed
	return u, nil
}

// CheckForUpdate returns the latest release and whether it is newer than currentVersion.
func (u *Upgrader) CheckForUpdate(ctx context.Context, currentVersion string) (*github.RepositoryRelease, bool, error) {
	u.logger.Debug("Checking for updates...")

	release, _, err := u.client.Repositories.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get latest release: %w", err)
	}

	latest := strings.TrimPrefix(release.GetTagName(), "v")
	current := strings.TrimPrefix(currentVersion, "v")
	u.logger.Debugf("Current version: %s, Latest version: %s", current, latest)

	return release, newer(latest, current), nil
}

// newer compares dotted numeric versions. Non-numeric versions such as "dev" are always
// considered older.
func newer(latest, current string) bool {
	lp, lok := parseVersion(latest)
	cp, cok := parseVersion(current)
	if !lok {
		return false
	}
	if !cok {
		return true
	}
	for i := 0; i < max(len(lp), len(cp)); i++ {
		var l, c int
		if i < len(lp) {
			l = lp[i]
		}
		if i < len(cp) {
			c = cp[i]
		}
		if l != c {
			return l > c
		}
	}
	return false
}

func parseVersion(v string) ([]int, bool) {
	v, _, _ = strings.Cut(v, "-")
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// GetBinaryName returns the release asset name for the current platform.
func (u *Upgrader) GetBinaryName() string {
	return assetName(runtime.GOOS, runtime.GOARCH)
}

func assetName(goos, arch string) string {
	switch arch {
	case "amd64", "386", "arm64", "arm":
	default:
		arch = "amd64"
	}

	switch goos {
	case "darwin":
		return fmt.Sprintf("%s-macos-%s", binaryName, arch)
	case "linux":
		return fmt.Sprintf("%s-linux-%s", binaryName, arch)
	case "windows":
		return fmt.Sprintf("%s-windows-%s.exe", binaryName, arch)
	default:
		return fmt.Sprintf("%s_%s_%s", binaryName, goos, arch)
	}
}

// DownloadBinary downloads the asset for the current platform into a temporary file.
func (u *Upgrader) DownloadBinary(ctx context.Context, release *github.RepositoryRelease) (string, error) {
	name := u.GetBinaryName()
	u.logger.Debugf("Looking for binary: %s", name)

	var asset *github.ReleaseAsset
	for _, a := range release.Assets {
		if a.GetName() == name {
			asset = a
			break
		}
	}
	if asset == nil {
		return "", fmt.Errorf("binary %s not found in release %s", name, release.GetTagName())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.GetBrowserDownloadURL(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download binary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download binary: HTTP %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", binaryName+"-upgrade-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to write binary to temporary file: %w", err)
	}

	// #nosec G302 -- executable binary requires 0755 permissions
	if err := os.Chmod(tmpFile.Name(), 0o755); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", fmt.Errorf("failed to make binary executable: %w", err)
	}

	u.logger.Debugf("Downloaded binary to: %s", tmpFile.Name())
	return tmpFile.Name(), nil
}

// ReplaceBinary swaps the running executable for newBinaryPath, keeping a backup until the
// copy succeeded.
func (u *Upgrader) ReplaceBinary(newBinaryPath string) error {
	currentPath, err := u.executable()
	if err != nil {
		return fmt.Errorf("failed to get current executable path: %w", err)
	}

	backupPath := filepath.Join(filepath.Dir(currentPath), filepath.Base(currentPath)+".backup")
	if err := copyFile(currentPath, backupPath); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	u.logger.Debugf("Created backup at: %s", backupPath)

	if err := copyFile(newBinaryPath, currentPath); err != nil {
		_ = copyFile(backupPath, currentPath)
		_ = os.Remove(backupPath)
		return fmt.Errorf("failed to replace binary: %w", err)
	}

	// #nosec G302 -- executable binary requires 0755 permissions
	if err := os.Chmod(currentPath, 0o755); err != nil {
		_ = copyFile(backupPath, currentPath)
		_ = os.Remove(backupPath)
		return fmt.Errorf("failed to make new binary executable: %w", err)
	}

	_ = os.Remove(backupPath)
	_ = os.Remove(newBinaryPath)
	return nil
}

func copyFile(src, dst string) error {
	// #nosec G304 -- file paths are controlled and validated in calling functions
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	// #nosec G304 -- file paths are controlled and validated in calling functions
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// Upgrade checks for a newer release and installs it.
func (u *Upgrader) Upgrade(ctx context.Context, currentVersion string) (*Result, error) {
	release, hasUpdate, err := u.CheckForUpdate(ctx, currentVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}

	result := &Result{
		CurrentVersion: currentVersion,
		LatestVersion:  release.GetTagName(),
	}
	if !hasUpdate {
		result.Message = fmt.Sprintf("You are already running the latest version (%s)", currentVersion)
		return result, nil
	}

	u.logger.Infof("Found newer version: %s", release.GetTagName())
	newBinaryPath, err := u.DownloadBinary(ctx, release)
	if err != nil {
		return nil, fmt.Errorf("failed to download new binary: %w", err)
	}
	if err := u.ReplaceBinary(newBinaryPath); err != nil {
		return nil, fmt.Errorf("failed to replace binary: %w", err)
	}

	result.Upgraded = true
	result.Message = fmt.Sprintf("Successfully upgraded from %s to %s", currentVersion, release.GetTagName())
	return result, nil
}
