package grpc

import (
	"context"
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/farhapartex/food-search-proxy/internal/config"
	"github.com/farhapartex/food-search-proxy/internal/handlers"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "foodsearch.v1.FoodSearchService"
	// SearchFoodsMethod is the full method path of SearchFoods
	SearchFoodsMethod = "/" + ServiceName + "/SearchFoods"
)

// FoodSearchServer is the server API for the food search service
type FoodSearchServer interface {
	SearchFoods(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FoodSearchServiceDesc describes the food search service. Requests and
// responses are google.protobuf.Struct values mirroring the HTTP JSON bodies.
var FoodSearchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FoodSearchServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SearchFoods",
			Handler:    searchFoodsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodsearch/v1/food_search.proto",
}

func searchFoodsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FoodSearchServer).SearchFoods(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SearchFoodsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FoodSearchServer).SearchFoods(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements FoodSearchServer on top of the search relay
type Server struct {
	searchHandler *handlers.SearchHandler
	config        *config.Config
}

var _ FoodSearchServer = (*Server)(nil)

// NewServer creates a gRPC food search server
func NewServer(cfg *config.Config, searchHandler *handlers.SearchHandler) *Server {
	return &Server{
		searchHandler: searchHandler,
		config:        cfg,
	}
}

// SearchFoods relays one search and returns the upstream JSON object as a Struct
func (s *Server) SearchFoods(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := models.FoodSearchRequestFromProto(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	log.Ctx(ctx).Info().Str("search_expression", req.SearchExpression).Msg("received gRPC search request")

	searchCtx, cancel := context.WithTimeout(ctx, s.config.Server.ServerTimeout)
	defer cancel()

	response, err := s.searchHandler.Search(searchCtx, req)
	if err != nil {
		kind := handlers.Classify(err)
		log.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("gRPC search failed")
		return nil, status.Error(codeForKind(kind), handlers.PublicMessage(kind, err))
	}

	out, err := response.ToProto()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func codeForKind(kind handlers.ErrorKind) codes.Code {
	switch kind {
	case handlers.KindInvalidRequest:
		return codes.InvalidArgument
	case handlers.KindUpstreamAuth, handlers.KindUpstreamUnreachable:
		return codes.Unavailable
	case handlers.KindUpstreamTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// Register installs the food search, health and reflection services on srv
func Register(srv *grpc.Server, searchServer *Server) *health.Server {
	srv.RegisterService(&FoodSearchServiceDesc, searchServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthServer)

	reflection.Register(srv)
	return healthServer
}

// NewGRPCServer builds a grpc.Server with request logging and all services registered
func NewGRPCServer(cfg *config.Config, searchHandler *handlers.SearchHandler) (*grpc.Server, *health.Server) {
	grpcSrv := grpc.NewServer(
		grpc.MaxConcurrentStreams(1000),
		grpc.UnaryInterceptor(loggingInterceptor),
	)
	healthServer := Register(grpcSrv, NewServer(cfg, searchHandler))
	return grpcSrv, healthServer
}

// Serve runs srv on addr until ctx is cancelled
func Serve(ctx context.Context, srv *grpc.Server, healthServer *health.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("gracefully stopping gRPC server")
		healthServer.Shutdown()
		srv.GracefulStop()
	}()

	log.Info().Str("addr", addr).Msg("gRPC server listening")
	return srv.Serve(lis)
}
