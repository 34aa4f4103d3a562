// Package panel implements the remote alarm panel gRPC service.
//
// The service has no generated stubs: requests and responses are protobuf
// well-known types (Int32Value, StringValue, Empty, Struct) registered
// through a hand-written grpc.ServiceDesc. Commands are posted to the event
// bus, so a remote panel never mutates controller state directly.
package panel
