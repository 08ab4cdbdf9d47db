package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*
 * gRPC bindings for the Translator service.
 *
 * Requests and responses are protobuf well-known types, so no generated
 * message code is needed: the rule tree travels as a google.protobuf.Struct
 * (same shape as the rule editor's JSON), the bool query comes back as a
 * Struct and the query string as a StringValue.
 *
 *   service rulequery.v1.Translator {
 *     rpc BuildBoolQuery(google.protobuf.Struct) returns (google.protobuf.Struct);
 *     rpc BuildQueryString(google.protobuf.Struct) returns (google.protobuf.StringValue);
 *   }
 *
 * An empty request Struct means "translate the server's default rules".
 */

const (
	TranslatorServiceName                      = "rulequery.v1.Translator"
	Translator_BuildBoolQuery_FullMethodName   = "/rulequery.v1.Translator/BuildBoolQuery"
	Translator_BuildQueryString_FullMethodName = "/rulequery.v1.Translator/BuildQueryString"
)

// TranslatorServer is the server API for the Translator service.
type TranslatorServer interface {
	BuildBoolQuery(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuildQueryString(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

// RegisterTranslatorServer registers srv on s.
func RegisterTranslatorServer(s grpc.ServiceRegistrar, srv TranslatorServer) {
	s.RegisterService(&Translator_ServiceDesc, srv)
}

func _Translator_BuildBoolQuery_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranslatorServer).BuildBoolQuery(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Translator_BuildBoolQuery_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TranslatorServer).BuildBoolQuery(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Translator_BuildQueryString_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TranslatorServer).BuildQueryString(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Translator_BuildQueryString_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TranslatorServer).BuildQueryString(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Translator_ServiceDesc is the grpc.ServiceDesc for the Translator service.
var Translator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TranslatorServiceName,
	HandlerType: (*TranslatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BuildBoolQuery", Handler: _Translator_BuildBoolQuery_Handler},
		{MethodName: "BuildQueryString", Handler: _Translator_BuildQueryString_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rulequery/v1/translator.proto",
}

// TranslatorClient is the client API for the Translator service.
type TranslatorClient struct {
	cc grpc.ClientConnInterface
}

// NewTranslatorClient wraps a connection.
func NewTranslatorClient(cc grpc.ClientConnInterface) *TranslatorClient {
	return &TranslatorClient{cc: cc}
}

// BuildBoolQuery calls Translator.BuildBoolQuery.
func (c *TranslatorClient) BuildBoolQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Translator_BuildBoolQuery_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildQueryString calls Translator.BuildQueryString.
func (c *TranslatorClient) BuildQueryString(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, Translator_BuildQueryString_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
