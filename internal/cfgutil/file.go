// Copyright (c) 2015, 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// FileExists reports whether the named file or directory exists.
func FileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CleanAndExpandPath expands environment variables and a leading ~ in the
// passed path, cleans the result, and returns it.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	if path[0] == '~' {
		var homeDir string

		rest := path[1:]
		name := rest
		if i := strings.IndexAny(rest, `/\`); i >= 0 {
			name, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}

		var u *user.User
		var err error
		if name == "" {
			u, err = user.Current()
		} else {
			u, err = user.Lookup(name)
		}
		if err == nil {
			homeDir = u.HomeDir
		}
		// Fallback to CWD if user lookup fails or user has no home
		// directory.
		if homeDir == "" {
			homeDir = "."
		}

		path = homeDir + rest
	}

	return filepath.Clean(os.ExpandEnv(path))
}
