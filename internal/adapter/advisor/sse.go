package advisor

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"gift-advisor/internal/domain"
)

// maxSSELine bounds a single SSE line.
const maxSSELine = 1 << 20

// readSSE calls onData with the payload of every "data:" line until the
// "[DONE]" marker, end of body or cancellation. Comments and other fields
// are skipped. An error from onData stops reading and is returned.
func readSSE(ctx context.Context, body io.Reader, onData func(data []byte) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		data, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		data = bytes.TrimPrefix(data, []byte(" "))
		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}
		if err := onData(data); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domain.NewDomainError("advisor.readSSE", domain.ErrProviderError, err.Error())
	}
	return nil
}
