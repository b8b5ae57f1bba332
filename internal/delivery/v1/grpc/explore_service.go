package grpc

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/nudge-backend/internal/delivery/v1/dto"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ExploreServiceName = "nudge.v1.ExploreService"

// ExploreServiceServer: сервер nudge.v1.ExploreService. Запрос и ответ передаются как
// google.protobuf.Struct с теми же ключами, что и HTTP JSON.
type ExploreServiceServer interface {
	Explore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ExploreServiceDesc описывает сервис без сгенерированного кода: в обоих направлениях
// ходит well-known тип Struct.
var ExploreServiceDesc = grpc.ServiceDesc{
	ServiceName: ExploreServiceName,
	HandlerType: (*ExploreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Explore",
			Handler:    exploreHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nudge/v1/explore.proto",
}

func exploreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).Explore(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ExploreServiceName + "/Explore",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExploreServiceServer).Explore(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

type ExploreService struct {
	exploreUC usecase.ExploreUC
	logger    logger.Logger
}

func NewExploreService(exploreUC usecase.ExploreUC, logger logger.Logger) *ExploreService {
	return &ExploreService{exploreUC: exploreUC, logger: logger}
}

func (g *ExploreService) Explore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Explore"

	var in dto.ExploreRequest
	if err := fromStruct(req, &in); err != nil {
		g.logger.Warnf("%s: %s", op, err.Error())
		return nil, GRPCErrorResponse(e.Wrap(op, fmt.Errorf("%w: %v", e.ErrStatusBadRequest, err)))
	}

	res, err := g.exploreUC.Explore(ctx, in.ToUseCase())
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	out, err := toStruct(dto.NewExploreResponse(res))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return out, nil
}
