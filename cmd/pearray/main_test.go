// Copyright (C) 2024 The PearRay-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PearCoding/PearRay-go/internal/tile"
)

func TestParseCropFullFrame(t *testing.T) {
	r, err := parseCrop("0,1,0,1", 320, 240)
	require.NoError(t, err)
	require.Equal(t, tile.Rect{MinX: 0, MaxX: 320, MinY: 0, MaxY: 240}, r)
}

func TestParseCropHalfFrame(t *testing.T) {
	r, err := parseCrop("0,0.5,0,0.5", 320, 240)
	require.NoError(t, err)
	require.Equal(t, tile.Rect{MinX: 0, MaxX: 160, MinY: 0, MaxY: 120}, r)
}

func TestParseCropWrongArity(t *testing.T) {
	_, err := parseCrop("0,1,0", 320, 240)
	require.Error(t, err)
}

func TestParseCropNotANumber(t *testing.T) {
	_, err := parseCrop("0,1,0,nope", 320, 240)
	require.Error(t, err)
}

func TestBuildIntegratorKnownNames(t *testing.T) {
	for _, name := range []string{"direct", "bidirectional", "ppm"} {
		integ, err := buildIntegrator(name)
		require.NoError(t, err, name)
		require.NotNil(t, integ, name)
	}
}

func TestBuildIntegratorUnknownNameIsError(t *testing.T) {
	_, err := buildIntegrator("nonexistent")
	require.Error(t, err)
}

func TestPluginPathsMergesFlagAndEnv(t *testing.T) {
	old, hadOld := os.LookupEnv("PR_PLUGIN_PATH")
	require.NoError(t, os.Setenv("PR_PLUGIN_PATH", "/env/a:/env/b"))
	defer func() {
		if hadOld {
			os.Setenv("PR_PLUGIN_PATH", old)
		} else {
			os.Unsetenv("PR_PLUGIN_PATH")
		}
	}()

	paths := pluginPaths(options{pluginPath: []string{"/flag/a"}})
	require.Equal(t, []string{"/flag/a", "/env/a", "/env/b"}, paths)
}

func TestPluginPathsEmptyWhenUnset(t *testing.T) {
	old, hadOld := os.LookupEnv("PR_PLUGIN_PATH")
	os.Unsetenv("PR_PLUGIN_PATH")
	defer func() {
		if hadOld {
			os.Setenv("PR_PLUGIN_PATH", old)
		}
	}()

	require.Empty(t, pluginPaths(options{}))
}
