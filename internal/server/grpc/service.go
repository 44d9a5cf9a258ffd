package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "gophauth.AuthService"

const (
	AuthService_Register_FullMethodName          = "/" + ServiceName + "/Register"
	AuthService_Login_FullMethodName             = "/" + ServiceName + "/Login"
	AuthService_Refresh_FullMethodName           = "/" + ServiceName + "/Refresh"
	AuthService_Logout_FullMethodName            = "/" + ServiceName + "/Logout"
	AuthService_Authenticate_FullMethodName      = "/" + ServiceName + "/Authenticate"
	AuthService_UpdateRoles_FullMethodName       = "/" + ServiceName + "/UpdateRoles"
	AuthService_SetActive_FullMethodName         = "/" + ServiceName + "/SetActive"
	AuthService_DeleteCredentials_FullMethodName = "/" + ServiceName + "/DeleteCredentials"
)

// AuthServiceServer is the server API of gophauth.AuthService.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	Refresh(context.Context, *RefreshRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	UpdateRoles(context.Context, *UpdateRolesRequest) (*IdentityResponse, error)
	SetActive(context.Context, *SetActiveRequest) (*Empty, error)
	DeleteCredentials(context.Context, *DeleteCredentialsRequest) (*Empty, error)
}

// unary builds a MethodDesc the way protoc-gen-go-grpc lays out its handlers.
func unary[Req, Resp any](name string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthService_ServiceDesc is the grpc.ServiceDesc for gophauth.AuthService.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", AuthServiceServer.Register),
		unary("Login", AuthServiceServer.Login),
		unary("Refresh", AuthServiceServer.Refresh),
		unary("Logout", AuthServiceServer.Logout),
		unary("Authenticate", AuthServiceServer.Authenticate),
		unary("UpdateRoles", AuthServiceServer.UpdateRoles),
		unary("SetActive", AuthServiceServer.SetActive),
		unary("DeleteCredentials", AuthServiceServer.DeleteCredentials),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// AuthServiceClient is the client API of gophauth.AuthService. Every call
// uses the JSON codec.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *AuthServiceClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, AuthService_Register_FullMethodName, in, opts)
}

func (c *AuthServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c, AuthService_Login_FullMethodName, in, opts)
}

func (c *AuthServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c, AuthService_Refresh_FullMethodName, in, opts)
}

func (c *AuthServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, AuthService_Logout_FullMethodName, in, opts)
}

func (c *AuthServiceClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	return invoke[AuthenticateResponse](ctx, c, AuthService_Authenticate_FullMethodName, in, opts)
}

func (c *AuthServiceClient) UpdateRoles(ctx context.Context, in *UpdateRolesRequest, opts ...grpc.CallOption) (*IdentityResponse, error) {
	return invoke[IdentityResponse](ctx, c, AuthService_UpdateRoles_FullMethodName, in, opts)
}

func (c *AuthServiceClient) SetActive(ctx context.Context, in *SetActiveRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, AuthService_SetActive_FullMethodName, in, opts)
}

func (c *AuthServiceClient) DeleteCredentials(ctx context.Context, in *DeleteCredentialsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, AuthService_DeleteCredentials_FullMethodName, in, opts)
}
