package rdapclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// errProtocol marks a body that decoded as JSON but is not a usable RDAP
// domain object.
var errProtocol = errors.New("rdap protocol violation")

// ParseDomain decodes an RDAP domain response. A body that is not JSON at
// all is returned as a plain error; well-formed JSON of the wrong shape
// (wrong member types, wrong class, incomplete events) wraps errProtocol.
func ParseDomain(body []byte) (*Domain, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty RDAP body")
	}
	if !json.Valid(body) {
		return nil, errors.New("RDAP body is not valid JSON")
	}
	var d Domain
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", errProtocol, err)
	}
	if !d.Validate() {
		if d.ObjectClassName == "" {
			return nil, fmt.Errorf("%w: missing objectClassName", errProtocol)
		}
		return nil, fmt.Errorf("%w: %w", errProtocol, ErrUnexpectedObject("domain"))
	}
	for i, ev := range d.Events {
		if ev.EventAction == "" {
			return nil, fmt.Errorf("%w: event %d has no eventAction", errProtocol, i)
		}
	}
	return &d, nil
}

func parseErrorResponse(body []byte) (ErrorResponse, bool) {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ErrorResponse{}, false
	}
	return er, er.ErrorCode != 0 || er.Title != ""
}
