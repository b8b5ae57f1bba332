package grpc

import (
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return status.Error(codes.InvalidArgument, e.ErrStatusBadRequest.Error())
	case errors.Is(err, e.ErrProjectNotFound), errors.Is(err, e.ErrAssetNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// fromStruct раскладывает google.protobuf.Struct в DTO через JSON: ключи те же, что в HTTP.
func fromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return nil
	}

	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dst)
}

// toStruct сериализует DTO в google.protobuf.Struct с JSON-именами полей.
func toStruct(src any) (*structpb.Struct, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}

	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, err
	}

	return out, nil
}
