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

// Package rpc exposes the render engine over gRPC: StartRender, StreamStatus
// and Cancel, the same client/server split google-gapid's gapis/service
// layer uses for its renderer-to-client boundary. This package hand-writes
// its service descriptor and wire messages instead of generating them with
// protoc (no compiler available in this exercise), so messages are plain Go
// structs exchanged through grpc's pluggable-codec mechanism rather than
// protoc-gen-go output; StatusUpdate still carries genuine
// google.golang.org/protobuf well-known types (Timestamp, Duration) for its
// time fields, since grpc's transport and keepalive/flow-control machinery
// is exercised identically regardless of which codec rides on top of it.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
