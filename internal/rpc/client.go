package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// Client wraps a gRPC connection to a guess server.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to the guess server at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// Start opens a round.
func (c *Client) Start(ctx context.Context) (StartResponse, error) {
	var resp StartResponse
	err := c.call(ctx, "Start", struct{}{}, &resp)
	return resp, err
}

// Next fetches the pending prompt of a round.
func (c *Client) Next(ctx context.Context, roundID string) (PromptView, error) {
	var resp PromptView
	err := c.call(ctx, "Next", RoundRequest{RoundID: roundID}, &resp)
	return resp, err
}

// Answer answers the pending question.
func (c *Client) Answer(ctx context.Context, roundID string, yes bool) (AnswerResponse, error) {
	var resp AnswerResponse
	err := c.call(ctx, "Answer", AnswerRequest{RoundID: roundID, Yes: yes}, &resp)
	return resp, err
}

// Confirm settles the pending guess.
func (c *Client) Confirm(ctx context.Context, roundID string, correct bool) (OutcomeResponse, error) {
	var resp OutcomeResponse
	err := c.call(ctx, "Confirm", ConfirmRequest{RoundID: roundID, Correct: correct}, &resp)
	return resp, err
}

// Reveal names the item after a missed final guess.
func (c *Client) Reveal(ctx context.Context, roundID, name string) (OutcomeResponse, error) {
	var resp OutcomeResponse
	err := c.call(ctx, "Reveal", RevealRequest{RoundID: roundID, Name: name}, &resp)
	return resp, err
}

// Abandon ends a round without learning.
func (c *Client) Abandon(ctx context.Context, roundID string) (OutcomeResponse, error) {
	var resp OutcomeResponse
	err := c.call(ctx, "Abandon", RoundRequest{RoundID: roundID}, &resp)
	return resp, err
}

// Stats fetches learning statistics.
func (c *Client) Stats(ctx context.Context, topN int) (StatsResponse, error) {
	var resp StatsResponse
	err := c.call(ctx, "Stats", StatsRequest{TopN: topN}, &resp)
	return resp, err
}

func (c *Client) call(ctx context.Context, name string, req, resp any) error {
	in, err := encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(name), in, out); err != nil {
		return fmt.Errorf("%s rpc: %w", name, err)
	}
	return decode(out, resp)
}

// #endregion calls
