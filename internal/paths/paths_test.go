// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	assert.Equal(t, dir, GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), GetConfigFile())
	assert.Equal(t, filepath.Join(dir, "exceptions.yaml"), GetExceptionsFile())
}

func TestGetConfigDir_Default(t *testing.T) {
	t.Setenv(ConfigDirEnv, "")
	assert.Contains(t, GetConfigDir(), "ambiguity-scan")
}
