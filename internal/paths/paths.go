// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "AMBIGUITY_SCAN_CONFIG_DIR"

const appDir = "ambiguity-scan"

// GetConfigDir returns the ambiguity-scan configuration directory.
// The AMBIGUITY_SCAN_CONFIG_DIR override wins, then the OS user config dir,
// then a dot directory in the home directory.
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDir)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appDir)
	}
	return "." + appDir
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetExceptionsFile returns the path to the exception rules file
func GetExceptionsFile() string {
	return filepath.Join(GetConfigDir(), "exceptions.yaml")
}
