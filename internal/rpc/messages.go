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

package rpc

import (
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// RenderConfig is the wire form of internal/render.Config's caller-facing
// fields (spec.md §6's CLI options), not the whole struct: threads/crop/seed
// are the ones a remote client picks.
type RenderConfig struct {
	Threads    int32
	Seed       uint64
	CropXMin   float32
	CropXMax   float32
	CropYMin   float32
	CropYMax   float32
	PluginPath []string
}

// StartRenderRequest names the scene file and render configuration.
type StartRenderRequest struct {
	ScenePath string
	Workdir   string
	Config    RenderConfig
}

// StartRenderResponse returns the job id StreamStatus/Cancel address.
type StartRenderResponse struct {
	JobID string
}

// StatusUpdate carries internal/render.Observer's per-pass progress plus wall
// clock bookkeeping. One is streamed per completed pass, and a final one has
// Done set; tile completions publish no update.
type StatusUpdate struct {
	JobID          string
	Pass           int32
	FinishedPixels int32
	TotalPixels    int32
	StartedAt      *timestamppb.Timestamp
	Elapsed        *durationpb.Duration
	Done           bool
	Error          string
}

// StatusRequest names the job StreamStatus should follow.
type StatusRequest struct {
	JobID string
}

// CancelRequest asks the named job to stop cooperatively.
type CancelRequest struct {
	JobID string
}

// CancelResponse reports whether JobID was a known, still-running job.
type CancelResponse struct {
	Accepted bool
}
