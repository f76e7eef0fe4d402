package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region client-struct
// Client wraps the gRPC connection to a replay daemon.
type Client struct {
	conn   *grpc.ClientConn
	client ReplayServiceClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to the replay daemon at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewReplayServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc ReplayServiceClient) *Client {
	return &Client{client: svc}
}
// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region session
// OpenSession starts or resumes history for documentID. initial may be nil.
func (c *Client) OpenSession(ctx context.Context, documentID string, initial widget.Snapshot, historyLimit int) (SessionState, error) {
	req, err := snapshotRequest(documentID, initial)
	if err != nil {
		return SessionState{}, err
	}
	if historyLimit > 0 {
		req.Fields[fieldHistoryLimit] = structpb.NewNumberValue(float64(historyLimit))
	}
	resp, err := c.client.OpenSession(ctx, req)
	if err != nil {
		return SessionState{}, fmt.Errorf("open session rpc: %w", err)
	}
	return decodeState(resp)
}

// CloseSession drops the document's history on the daemon.
func (c *Client) CloseSession(ctx context.Context, documentID string) error {
	if _, err := c.client.CloseSession(ctx, documentRequest(documentID)); err != nil {
		return fmt.Errorf("close session rpc: %w", err)
	}
	return nil
}

// Current fetches the live tree.
func (c *Client) Current(ctx context.Context, documentID string) (SessionState, error) {
	resp, err := c.client.Current(ctx, documentRequest(documentID))
	if err != nil {
		return SessionState{}, fmt.Errorf("current rpc: %w", err)
	}
	return decodeState(resp)
}
// #endregion session

// #region actions
// Commit sends an edited tree.
func (c *Client) Commit(ctx context.Context, documentID string, snap widget.Snapshot) (SessionState, error) {
	if snap == nil {
		snap = widget.Snapshot{}
	}
	req, err := snapshotRequest(documentID, snap)
	if err != nil {
		return SessionState{}, err
	}
	resp, err := c.client.Commit(ctx, req)
	if err != nil {
		return SessionState{}, fmt.Errorf("commit rpc: %w", err)
	}
	return decodeState(resp)
}

// Undo steps the document back one version.
func (c *Client) Undo(ctx context.Context, documentID string) (ReplayOutcome, error) {
	resp, err := c.client.Undo(ctx, documentRequest(documentID))
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("undo rpc: %w", err)
	}
	return decodeOutcome(resp)
}

// Redo steps the document forward one version.
func (c *Client) Redo(ctx context.Context, documentID string) (ReplayOutcome, error) {
	resp, err := c.client.Redo(ctx, documentRequest(documentID))
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("redo rpc: %w", err)
	}
	return decodeOutcome(resp)
}
// #endregion actions
