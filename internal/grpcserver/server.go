// Package grpcserver implements the VisibilityService gRPC server.
//
// It delegates all business logic to report.Service and handles
// only the gRPC transport concerns: metadata extraction, error mapping,
// and conversion between Struct documents and the service types.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/visibility-service/internal/report"
	"jobmate/visibility-service/internal/visibility"
)

// Server implements VisibilityServer.
type Server struct {
	svc *report.Service
}

// NewServer constructs a gRPC Server backed by the given report.Service.
func NewServer(svc *report.Service) *Server {
	return &Server{svc: svc}
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// EvaluateSnapshot returns the decisions for a caller-supplied snapshot.
func (s *Server) EvaluateSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}

	var in report.EvaluateRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}

	resp, err := s.svc.Evaluate(ctx, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(resp)
}

// OpenContact returns the messaging link for a visible number.
func (s *Server) OpenContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var in report.ContactRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	if in.JobID == "" && in.CandidateID == "" {
		return nil, status.Error(codes.InvalidArgument, "jobId or candidateId is required")
	}

	target, err := s.svc.OpenContact(ctx, userID, in)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return toStruct(target)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, report.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errors.Is(err, visibility.ErrMaskedContact) {
		return status.Error(codes.PermissionDenied, visibility.MaskedContactMessage)
	}
	var ve *report.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	log.Printf("[grpc] internal error: %v", err)
	return status.Error(codes.Internal, "internal server error")
}

// fromStruct decodes a Struct document into v through its JSON form.
func fromStruct(st *structpb.Struct, v any) error {
	b, err := protojson.Marshal(st)
	if err != nil {
		return status.Error(codes.InvalidArgument, "unreadable request")
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request: "+err.Error())
	}
	return nil
}

// toStruct encodes v as a Struct document.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}
