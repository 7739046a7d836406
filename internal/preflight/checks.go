package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritablePath verifies that path either is a writable directory or
// could be created as one. A missing path passes when its nearest existing
// ancestor is writable; directories are created lazily at use.
func CheckWritablePath(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		return CheckDirectoryAccess(name, path)
	}

	ancestor := nearestExistingAncestor(path)
	if ancestor == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func nearestExistingAncestor(path string) string {
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
