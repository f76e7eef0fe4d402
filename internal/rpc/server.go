package rpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/history"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/state"
	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// ErrUnknownDocument is returned for a document with no open session.
var ErrUnknownDocument = errors.New("unknown document")

var _ ReplayServiceServer = (*Server)(nil)

// #region server-struct
// Server implements ReplayServiceServer with one orchestrator per open
// document. A single mutex serializes every call, so at most one replay
// action is in flight at a time.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*orchestrator.Orchestrator
	store    *state.Store
	opts     orchestrator.Options
}

// NewServer returns a server. store may be nil, in which case history is
// kept in memory only. opts.Recorder is replaced by a store recorder when
// store is set.
func NewServer(store *state.Store, opts orchestrator.Options) *Server {
	if store != nil {
		opts.Recorder = orchestrator.NewStoreRecorder(store)
	}
	return &Server{
		sessions: make(map[string]*orchestrator.Orchestrator),
		store:    store,
		opts:     opts,
	}
}
// #endregion server-struct

// #region open-close
// OpenSession starts history for a document. A snapshot in the request
// becomes the initial tree; without one the stored active version is
// resumed, or an empty tree is used. Opening an open document returns
// its current state.
func (s *Server) OpenSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	docID := stringField(req, fieldDocumentID)
	if docID == "" {
		return nil, status.Error(codes.InvalidArgument, "document_id is required")
	}
	snap, hasSnap, err := snapshotField(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode snapshot: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.sessions[docID]; ok {
		return s.stateOf(o)
	}

	initial := history.Entry{Snapshot: snap}
	if hasSnap {
		if v := widget.Validate(snap); !v.Passed {
			return nil, status.Errorf(codes.InvalidArgument, "%v: %s", orchestrator.ErrInvalidSnapshot, v.Reason)
		}
	} else if s.store != nil {
		stored, err := s.store.GetCurrent(docID)
		switch {
		case err == nil:
			initial = history.Entry{VersionID: stored.VersionID, Snapshot: stored.Snapshot, CapturedAt: stored.CreatedAt}
		case !errors.Is(err, state.ErrNotFound):
			return nil, toStatus(err)
		}
	}

	opts := s.opts
	if n := int(req.GetFields()[fieldHistoryLimit].GetNumberValue()); n > 0 {
		opts.HistoryLimit = n
	}
	o, err := orchestrator.New(ctx, docID, initial, opts)
	if err != nil {
		return nil, toStatus(err)
	}
	s.sessions[docID] = o
	log.Printf("[RPC] open document=%s (%d open)", docID, len(s.sessions))
	return s.stateOf(o)
}

// CloseSession drops a document's history. Stored versions stay.
func (s *Server) CloseSession(_ context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	o.Close()
	delete(s.sessions, o.DocumentID())
	log.Printf("[RPC] close document=%s (%d open)", o.DocumentID(), len(s.sessions))
	return &emptypb.Empty{}, nil
}

// Shutdown closes every open session.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.sessions {
		o.Close()
		delete(s.sessions, id)
	}
}
// #endregion open-close

// #region actions
// Commit records a new tree for the document.
func (s *Server) Commit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	snap, hasSnap, err := snapshotField(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode snapshot: %v", err)
	}
	if !hasSnap {
		return nil, status.Error(codes.InvalidArgument, "snapshot is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	entry, err := o.Commit(ctx, snap)
	if err != nil && entry.VersionID == "" {
		return nil, toStatus(err)
	}
	if err != nil {
		// the commit is in history; only recording it failed
		log.Printf("[RPC] document=%s commit %s applied with errors: %v", o.DocumentID(), entry.VersionID, err)
	}
	return s.stateOf(o)
}

// Undo steps the document back one version.
func (s *Server) Undo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.replay(ctx, req, (*orchestrator.Orchestrator).Undo)
}

// Redo steps the document forward one version.
func (s *Server) Redo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.replay(ctx, req, (*orchestrator.Orchestrator).Redo)
}

func (s *Server) replay(ctx context.Context, req *structpb.Struct, step func(*orchestrator.Orchestrator, context.Context) (orchestrator.Result, error)) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	res, err := step(o, ctx)
	if err != nil && !res.Applied {
		return nil, toStatus(err)
	}
	if err != nil {
		// history moved; the UI or the recorder failed after the fact
		log.Printf("[RPC] document=%s %s applied with errors: %v", o.DocumentID(), res.Direction, err)
	}

	out := ReplayOutcome{
		DocumentID: o.DocumentID(),
		Applied:    res.Applied,
		Direction:  string(res.Direction),
		Effects:    res.Effects,
		CanUndo:    o.CanUndo(),
		CanRedo:    o.CanRedo(),
	}
	cur, err := o.Current()
	if err != nil {
		return nil, toStatus(err)
	}
	out.VersionID = cur.VersionID

	msg, err := encodeOutcome(out)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}

// Current returns the document's live tree.
func (s *Server) Current(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	return s.stateOf(o)
}
// #endregion actions

// #region helpers
// lookup must be called with s.mu held.
func (s *Server) lookup(req *structpb.Struct) (*orchestrator.Orchestrator, error) {
	docID := stringField(req, fieldDocumentID)
	if docID == "" {
		return nil, status.Error(codes.InvalidArgument, "document_id is required")
	}
	o, ok := s.sessions[docID]
	if !ok {
		return nil, toStatus(fmt.Errorf("%w: %s", ErrUnknownDocument, docID))
	}
	return o, nil
}

func (s *Server) stateOf(o *orchestrator.Orchestrator) (*structpb.Struct, error) {
	cur, err := o.Current()
	if err != nil {
		return nil, toStatus(err)
	}
	msg, err := encodeState(SessionState{
		DocumentID: o.DocumentID(),
		VersionID:  cur.VersionID,
		Snapshot:   cur.Snapshot,
		CanUndo:    o.CanUndo(),
		CanRedo:    o.CanRedo(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnknownDocument), errors.Is(err, state.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, orchestrator.ErrInvalidSnapshot):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, history.ErrSessionClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
// #endregion helpers
