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

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveMissingFileNeedsUpdate(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	res, err := m.Resolve(GroupMesh, "sphere42", ".bin", nil)
	require.NoError(t, err)
	require.True(t, res.NeedsUpdate)
}

func TestResolveFreshAfterWrite(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	res, err := m.Resolve(GroupScene, "global", ".cnt", nil)
	require.NoError(t, err)
	require.NoError(t, m.Write(res.Path, []byte("bvh payload")))

	res2, err := m.Resolve(GroupScene, "global", ".cnt", nil)
	require.NoError(t, err)
	require.False(t, res2.NeedsUpdate)
}

func TestResolveStaleWhenDependencyNewer(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	res, err := m.Resolve(GroupMesh, "teapot", ".bin", nil)
	require.NoError(t, err)
	require.NoError(t, m.Write(res.Path, []byte("mesh payload")))

	depPath := filepath.Join(dir, "teapot.obj")
	require.NoError(t, os.WriteFile(depPath, []byte("v 0 0 0"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(depPath, future, future))

	res2, err := m.Resolve(GroupMesh, "teapot", ".bin", []string{depPath})
	require.NoError(t, err)
	require.True(t, res2.NeedsUpdate)
}

func TestWriteReadRoundTrip(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	res, err := m.Resolve(GroupNode, "coeff0", ".praw", nil)
	require.NoError(t, err)

	payload := []byte("parametric image bytes, repeated repeated repeated")
	require.NoError(t, m.Write(res.Path, payload))

	got, err := m.Read(res.Path)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
