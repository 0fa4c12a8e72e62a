package echoapi

import (
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// openEventStream prepares ctx's response for server-sent events and commits
// the header.
func openEventStream(ctx echo.Context) *echo.Response {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(200)
	return res
}

// writeEvent writes one SSE data frame with a JSON payload and flushes it.
func writeEvent(res *echo.Response, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshalling event")
	}
	if _, err = fmt.Fprintf(res, "data: %s\n\n", data); err != nil {
		return errors.Wrap(err, "writing event")
	}
	res.Flush()
	return nil
}
