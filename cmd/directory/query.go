package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	directorygrpc "github.com/0xsj/overwatch-directory/internal/adapter/inbound/grpc"
)

func newQueryCmd() *cobra.Command {
	var (
		addr    string
		params  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query <name>",
		Short: "Send a query to a running directory",
		Example: `  directory query directory.get_service_by_name --params '{"name":"billing"}'
  directory query directory.list_services --params '{"status":"active","limit":10}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildQueryRequest(args[0], params)
			if err != nil {
				return err
			}

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("failed to dial %s: %w", addr, err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := directorygrpc.NewQueryServiceClient(conn).Query(ctx, req)
			if err != nil {
				return err
			}

			out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:50061", "directory gRPC address")
	cmd.Flags().StringVar(&params, "params", "", "query parameters as a JSON object")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

func buildQueryRequest(name, params string) (*structpb.Struct, error) {
	fields := map[string]interface{}{"query": name}

	if params != "" {
		var p map[string]interface{}
		if err := json.Unmarshal([]byte(params), &p); err != nil {
			return nil, fmt.Errorf("invalid --params: %w", err)
		}
		fields["params"] = p
	}

	return structpb.NewStruct(fields)
}
