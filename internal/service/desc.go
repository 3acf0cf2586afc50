package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "formplan.v1.Validation"

// Full method names
const (
	MethodValidate  = "/" + ServiceName + "/Validate"
	MethodListForms = "/" + ServiceName + "/ListForms"
)

// ValidationServer is the server API of formplan.v1.Validation. Messages
// are generic structs; see EncodeRequest and EncodeResponse for the shape.
type ValidationServer interface {
	Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListForms(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterValidationServer registers srv on s
func RegisterValidationServer(s grpc.ServiceRegistrar, srv ValidationServer) {
	s.RegisterService(&ValidationServiceDesc, srv)
}

// ValidationServiceDesc describes formplan.v1.Validation
var ValidationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidationServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
		{
			MethodName: "ListForms",
			Handler:    listFormsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "formplan/v1/validation.proto",
}

func validateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidationServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodValidate,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValidationServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listFormsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidationServer).ListForms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodListForms,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValidationServer).ListForms(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
