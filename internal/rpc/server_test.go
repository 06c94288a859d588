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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/PearCoding/PearRay-go/internal/render"
)

// fakeStream is a minimal grpc.ServerStream for driving StreamStatus
// in-process, without a real network connection.
type fakeStream struct {
	ctx context.Context
	out chan *StatusUpdate
}

func (f *fakeStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeStream) SetTrailer(metadata.MD)       {}
func (f *fakeStream) Context() context.Context     { return f.ctx }
func (f *fakeStream) SendMsg(m interface{}) error  { return nil }
func (f *fakeStream) RecvMsg(interface{}) error    { return nil }
func (f *fakeStream) Send(u *StatusUpdate) error {
	f.out <- u
	return nil
}

func TestStartRenderThenStreamStatusReportsCompletion(t *testing.T) {
	runner := func(ctx context.Context, req *StartRenderRequest, obs render.Observer) error {
		obs.OnPassComplete(1, 10, 100)
		return nil
	}
	s := NewServer(runner)

	resp, err := s.StartRender(context.Background(), &StartRenderRequest{ScenePath: "furnace"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.JobID)

	stream := &fakeStream{ctx: context.Background(), out: make(chan *StatusUpdate, 8)}
	done := make(chan error, 1)
	go func() { done <- s.StreamStatus(&StatusRequest{JobID: resp.JobID}, stream) }()

	var lastDone bool
	for i := 0; i < 2; i++ {
		select {
		case u := <-stream.out:
			lastDone = u.Done
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for status update")
		}
	}
	require.True(t, lastDone)
	require.NoError(t, <-done)
}

func TestStreamStatusUnknownJobIsError(t *testing.T) {
	s := NewServer(func(context.Context, *StartRenderRequest, render.Observer) error { return nil })
	stream := &fakeStream{ctx: context.Background(), out: make(chan *StatusUpdate, 1)}
	err := s.StreamStatus(&StatusRequest{JobID: "nope"}, stream)
	require.Error(t, err)
}

func TestCancelUnknownJobReportsNotAccepted(t *testing.T) {
	s := NewServer(func(context.Context, *StartRenderRequest, render.Observer) error { return nil })
	resp, err := s.Cancel(context.Background(), &CancelRequest{JobID: "nope"})
	require.NoError(t, err)
	require.False(t, resp.Accepted)
}

func TestCancelRunningJobCancelsRunnerContext(t *testing.T) {
	started := make(chan struct{})
	runner := func(ctx context.Context, req *StartRenderRequest, obs render.Observer) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	s := NewServer(runner)
	resp, err := s.StartRender(context.Background(), &StartRenderRequest{})
	require.NoError(t, err)

	<-started
	cancelResp, err := s.Cancel(context.Background(), &CancelRequest{JobID: resp.JobID})
	require.NoError(t, err)
	require.True(t, cancelResp.Accepted)
}
