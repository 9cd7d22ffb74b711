package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "booking.v1.BookingService"

// Full method names, as seen by interceptors.
const (
	MethodRegister          = "/" + ServiceName + "/Register"
	MethodLogin             = "/" + ServiceName + "/Login"
	MethodRefresh           = "/" + ServiceName + "/Refresh"
	MethodLogout            = "/" + ServiceName + "/Logout"
	MethodListDoctors       = "/" + ServiceName + "/ListDoctors"
	MethodGetDoctor         = "/" + ServiceName + "/GetDoctor"
	MethodListAppointments  = "/" + ServiceName + "/ListAppointments"
	MethodCreateAppointment = "/" + ServiceName + "/CreateAppointment"
	MethodDeleteAppointment = "/" + ServiceName + "/DeleteAppointment"
)

type BookingServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Refresh(context.Context, *RefreshRequest) (*AuthResponse, error)
	Logout(context.Context, *Empty) (*MessageResponse, error)
	ListDoctors(context.Context, *Empty) (*ListDoctorsResponse, error)
	GetDoctor(context.Context, *GetDoctorRequest) (*Doctor, error)
	ListAppointments(context.Context, *Empty) (*ListAppointmentsResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*MessageResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*MessageResponse, error)
}

// UnimplementedBookingServer can be embedded to satisfy BookingServer.
type UnimplementedBookingServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedBookingServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedBookingServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedBookingServer) Refresh(context.Context, *RefreshRequest) (*AuthResponse, error) {
	return nil, unimplemented("Refresh")
}
func (UnimplementedBookingServer) Logout(context.Context, *Empty) (*MessageResponse, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedBookingServer) ListDoctors(context.Context, *Empty) (*ListDoctorsResponse, error) {
	return nil, unimplemented("ListDoctors")
}
func (UnimplementedBookingServer) GetDoctor(context.Context, *GetDoctorRequest) (*Doctor, error) {
	return nil, unimplemented("GetDoctor")
}
func (UnimplementedBookingServer) ListAppointments(context.Context, *Empty) (*ListAppointmentsResponse, error) {
	return nil, unimplemented("ListAppointments")
}
func (UnimplementedBookingServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*MessageResponse, error) {
	return nil, unimplemented("CreateAppointment")
}
func (UnimplementedBookingServer) DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*MessageResponse, error) {
	return nil, unimplemented("DeleteAppointment")
}

// unary builds the MethodDesc for one call, decoding into a fresh Req.
func unary[Req any, Resp Message, PReq interface {
	*Req
	Message
}](name string, call func(BookingServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BookingServer)
			if interceptor == nil {
				resp, err := call(s, ctx, in)
				return resp, err
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				resp, err := call(s, ctx, req.(PReq))
				return resp, err
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", BookingServer.Register),
		unary("Login", BookingServer.Login),
		unary("Refresh", BookingServer.Refresh),
		unary("Logout", BookingServer.Logout),
		unary("ListDoctors", BookingServer.ListDoctors),
		unary("GetDoctor", BookingServer.GetDoctor),
		unary("ListAppointments", BookingServer.ListAppointments),
		unary("CreateAppointment", BookingServer.CreateAppointment),
		unary("DeleteAppointment", BookingServer.DeleteAppointment),
	},
	Metadata: "api/booking/v1/booking.proto",
}

func RegisterBookingServer(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// BookingClient calls the service with the package codec.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (PResp, error) {
	out := PResp(new(Resp))
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *BookingClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *BookingClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRefresh, in, opts)
}

func (c *BookingClient) Logout(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *BookingClient) ListDoctors(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListDoctorsResponse, error) {
	return invoke[ListDoctorsResponse](ctx, c.cc, MethodListDoctors, in, opts)
}

func (c *BookingClient) GetDoctor(ctx context.Context, in *GetDoctorRequest, opts ...grpc.CallOption) (*Doctor, error) {
	return invoke[Doctor](ctx, c.cc, MethodGetDoctor, in, opts)
}

func (c *BookingClient) ListAppointments(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, MethodListAppointments, in, opts)
}

func (c *BookingClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MethodCreateAppointment, in, opts)
}

func (c *BookingClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MethodDeleteAppointment, in, opts)
}
