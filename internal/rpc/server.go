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
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/PearCoding/PearRay-go/internal/log"
	"github.com/PearCoding/PearRay-go/internal/render"
)

// Runner starts one render.Context's Run and blocks until it finishes or ctx
// is cancelled; Server.StartRender supplies it from a caller-built scene so
// this package stays free of scene-construction/loading concerns (§1
// Non-goals).
type Runner func(ctx context.Context, req *StartRenderRequest, observer render.Observer) error

// Server is the RenderServiceServer implementation wrapping one render
// backend. It tracks in-flight jobs the way google-gapid's gapis/service
// server tracks capture processors: one entry per job id, removed once the
// client has drained its final status update.
type Server struct {
	runner Runner

	mu   sync.Mutex
	jobs map[string]*job
}

type job struct {
	cancel  context.CancelFunc
	started time.Time
	updates chan *StatusUpdate

	mu   sync.Mutex
	done bool
}

// NewServer builds a Server that drives renders through runner.
func NewServer(runner Runner) *Server {
	return &Server{runner: runner, jobs: map[string]*job{}}
}

func newJobID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// jobObserver adapts render.Observer to a job's buffered update channel.
type jobObserver struct {
	jobID string
	j     *job
}

func (o jobObserver) OnPassComplete(pass int, finishedPixels, totalPixels int) {
	o.j.publish(&StatusUpdate{
		JobID:          o.jobID,
		Pass:           int32(pass),
		FinishedPixels: int32(finishedPixels),
		TotalPixels:    int32(totalPixels),
		StartedAt:      timestamppb.New(o.j.started),
		Elapsed:        durationpb.New(time.Since(o.j.started)),
	})
}

func (o jobObserver) OnTileComplete(int) {}

func (j *job) publish(u *StatusUpdate) {
	select {
	case j.updates <- u:
	default:
		// A slow/absent StreamStatus client must never stall the render
		// itself; drop the update, the next one supersedes it.
	}
}

func (j *job) finish(err error) {
	j.mu.Lock()
	j.done = true
	j.mu.Unlock()

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	j.publish(&StatusUpdate{
		StartedAt: timestamppb.New(j.started),
		Elapsed:   durationpb.New(time.Since(j.started)),
		Done:      true,
		Error:     msg,
	})
	close(j.updates)
}

// StartRender launches req's render in a background goroutine and returns
// immediately with a job id StreamStatus/Cancel can address.
func (s *Server) StartRender(ctx context.Context, req *StartRenderRequest) (*StartRenderResponse, error) {
	id := newJobID()
	jctx, cancel := context.WithCancel(context.Background())
	j := &job{cancel: cancel, started: time.Now(), updates: make(chan *StatusUpdate, 64)}

	s.mu.Lock()
	s.jobs[id] = j
	s.mu.Unlock()

	lctx := log.Wrap(ctx)
	go func() {
		err := s.runner(jctx, req, jobObserver{jobID: id, j: j})
		if err != nil && jctx.Err() == nil {
			lctx.Error().Cause(err).Log("render job %s failed", id)
		}
		j.finish(err)
	}()

	return &StartRenderResponse{JobID: id}, nil
}

// StreamStatus relays a job's status updates until it reports Done or the
// stream's context is cancelled.
func (s *Server) StreamStatus(req *StatusRequest, stream RenderService_StreamStatusServer) error {
	s.mu.Lock()
	j, ok := s.jobs[req.JobID]
	s.mu.Unlock()
	if !ok {
		return errors.Errorf("unknown job %q", req.JobID)
	}
	drained := func() {
		s.mu.Lock()
		delete(s.jobs, req.JobID)
		s.mu.Unlock()
	}

	for {
		select {
		case u, open := <-j.updates:
			if !open {
				drained()
				return nil
			}
			u.JobID = req.JobID
			if err := stream.Send(u); err != nil {
				return err
			}
			if u.Done {
				drained()
				return nil
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// Cancel requests cooperative shutdown of a running job (§7 kind 4); it is
// not an error for jobID to already be finished.
func (s *Server) Cancel(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	s.mu.Lock()
	j, ok := s.jobs[req.JobID]
	s.mu.Unlock()
	if !ok {
		return &CancelResponse{Accepted: false}, nil
	}
	j.mu.Lock()
	finished := j.done
	j.mu.Unlock()
	if finished {
		return &CancelResponse{Accepted: false}, nil
	}
	j.cancel()
	return &CancelResponse{Accepted: true}, nil
}
