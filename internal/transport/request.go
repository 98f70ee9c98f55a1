package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// maxErrorBody caps the response text copied into an APIError.
const maxErrorBody = 512

// DecodeResponse decodes a JSON response into the target structure. Non-200
// responses become an *errors.APIError; undecodable bodies a *errors.ParseError.
func DecodeResponse(resp *http.Response, source string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("source", source).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapAPI(source, endpoint(resp), errors.Join(errors.ErrRemoteUnavailable, err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = resp.Status
		}
		return &errors.APIError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint(resp),
			Message:    msg,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewParseError("json", endpoint(resp), "cannot decode response", err)
	}
	return nil
}

func endpoint(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}
