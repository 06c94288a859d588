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

	"google.golang.org/grpc"
)

// RenderServiceServer is the service interface a render backend implements;
// Server (server.go) is this package's implementation over internal/render.
type RenderServiceServer interface {
	StartRender(context.Context, *StartRenderRequest) (*StartRenderResponse, error)
	StreamStatus(*StatusRequest, RenderService_StreamStatusServer) error
	Cancel(context.Context, *CancelRequest) (*CancelResponse, error)
}

// RenderService_StreamStatusServer is the server-side handle to the
// StreamStatus response stream.
type RenderService_StreamStatusServer interface {
	Send(*StatusUpdate) error
	grpc.ServerStream
}

type renderServiceStreamStatusServer struct{ grpc.ServerStream }

func (x *renderServiceStreamStatusServer) Send(m *StatusUpdate) error {
	return x.ServerStream.SendMsg(m)
}

func startRenderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StartRenderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RenderServiceServer).StartRender(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/pearray.RenderService/StartRender"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RenderServiceServer).StartRender(ctx, req.(*StartRenderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RenderServiceServer).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/pearray.RenderService/Cancel"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RenderServiceServer).Cancel(ctx, req.(*CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamStatusHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(StatusRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RenderServiceServer).StreamStatus(m, &renderServiceStreamStatusServer{stream})
}

// ServiceDesc is the grpc.ServiceDesc a generated _grpc.pb.go would define;
// written by hand here rather than by protoc.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pearray.RenderService",
	HandlerType: (*RenderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartRender", Handler: startRenderHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamStatus", Handler: streamStatusHandler, ServerStreams: true},
	},
	Metadata: "pearray/render.proto",
}

// RegisterRenderServiceServer registers srv with s.
func RegisterRenderServiceServer(s grpc.ServiceRegistrar, srv RenderServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// RenderServiceClient is the client-side stub a CLI or viewer uses.
type RenderServiceClient interface {
	StartRender(ctx context.Context, req *StartRenderRequest, opts ...grpc.CallOption) (*StartRenderResponse, error)
	StreamStatus(ctx context.Context, req *StatusRequest, opts ...grpc.CallOption) (RenderService_StreamStatusClient, error)
	Cancel(ctx context.Context, req *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error)
}

type renderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRenderServiceClient wraps cc (typically from grpc.NewClient) as a
// RenderServiceClient.
func NewRenderServiceClient(cc grpc.ClientConnInterface) RenderServiceClient {
	return &renderServiceClient{cc}
}

func (c *renderServiceClient) StartRender(ctx context.Context, req *StartRenderRequest, opts ...grpc.CallOption) (*StartRenderResponse, error) {
	out := new(StartRenderResponse)
	if err := c.cc.Invoke(ctx, "/pearray.RenderService/StartRender", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *renderServiceClient) Cancel(ctx context.Context, req *CancelRequest, opts ...grpc.CallOption) (*CancelResponse, error) {
	out := new(CancelResponse)
	if err := c.cc.Invoke(ctx, "/pearray.RenderService/Cancel", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderService_StreamStatusClient is the client-side handle to the
// StreamStatus response stream.
type RenderService_StreamStatusClient interface {
	Recv() (*StatusUpdate, error)
	grpc.ClientStream
}

type renderServiceStreamStatusClient struct{ grpc.ClientStream }

func (x *renderServiceStreamStatusClient) Recv() (*StatusUpdate, error) {
	m := new(StatusUpdate)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *renderServiceClient) StreamStatus(ctx context.Context, req *StatusRequest, opts ...grpc.CallOption) (RenderService_StreamStatusClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/pearray.RenderService/StreamStatus", opts...)
	if err != nil {
		return nil, err
	}
	x := &renderServiceStreamStatusClient{stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
