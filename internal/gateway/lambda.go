package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
)

// Start hands h to the Lambda runtime. It never returns: the runtime exits
// the process, so cleanup belongs in lambda.WithEnableSIGTERM.
func Start(ctx context.Context, h Handler, opts ...lambda.Option) {
	opts = append([]lambda.Option{lambda.WithContext(ctx)}, opts...)
	lambda.StartWithOptions(h.Handle, opts...)
}

// Invoke runs h against one raw gateway event and returns the encoded
// response envelope, the way the runtime would.
func Invoke(ctx context.Context, h Handler, event []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, fmt.Errorf("decoding gateway event: %w", err)
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		status, body := StatusForError(err)
		resp = JSONResponse(DefaultCORSPolicy(), status, body)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return out, nil
}
