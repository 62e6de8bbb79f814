package broadcaster

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tranvictor/kredits/common"
)

type sendResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// parseResponse maps a send_asset response to a transaction hash. A JSON
// refusal is a TransferError; a body we can't read is a TransportError.
func parseResponse(status int, body []byte) (string, error) {
	resp := sendResponse{}
	jsonErr := json.Unmarshal(body, &resp)

	if status != http.StatusOK {
		if jsonErr != nil {
			return "", &common.TransportError{
				Service: serviceName,
				Op:      "send_asset",
				Status:  status,
				Err:     fmt.Errorf("couldn't unmarshal %s: %w", truncate(body), jsonErr),
			}
		}
		msg := resp.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return "", &common.TransferError{Status: status, Message: msg}
	}

	if jsonErr != nil {
		return "", &common.TransportError{
			Service: serviceName,
			Op:      "send_asset",
			Err:     fmt.Errorf("couldn't unmarshal %s: %w", truncate(body), jsonErr),
		}
	}
	if resp.Hash == "" {
		return "", &common.TransportError{
			Service: serviceName,
			Op:      "send_asset",
			Err:     fmt.Errorf("response has no transaction hash: %s", truncate(body)),
		}
	}
	return resp.Hash, nil
}

func truncate(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
