package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
)

type StatusCodeRange int

const (
	StatusUnknown StatusCodeRange = iota
	Status1xx
	Status2xx
	Status3xx
	Status4xx
	Status5xx
)

func (sc StatusCodeRange) String() string {
	switch sc {
	case Status1xx:
		return "informational response"
	case Status2xx:
		return "success"
	case Status3xx:
		return "redirect"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return fmt.Sprintf("unknown (%d)", sc)
	}
}

func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	sc := resp.StatusCode
	if sc < 200 {
		return Status1xx
	}
	if sc < 300 {
		return Status2xx
	}
	if sc < 400 {
		return Status3xx
	}
	if sc < 500 {
		return Status4xx
	}
	if sc < 600 {
		return Status5xx
	}
	return StatusUnknown
}

// MessageFor titles errors per HTTP status code range.
type MessageFor map[StatusCodeRange]string

// unmarshal http response which has json content.
//
// args:
//   - resp: http response to be processed.
//   - v: value which response should be.
//   - messageFor: title of error message for HTTP status code range.
//
// return:
//
//	error if...
//	- can not read response body
//	- response body is not shaped of v
//	- status code is in 4xx or 5xx
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	if scr <= Status2xx {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf(
				"unexpected response: %w (status code = %d)", err, resp.StatusCode,
			)
		}
		return nil
	}

	return errorFromResponse(resp, messageFor)
}

// errorFromResponse turns a non-2xx response into an *APIError,
// decoding the platform error payload when there is one.
func errorFromResponse(resp *http.Response, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	message, ok := messageFor[scr]
	if !ok {
		message = scr.String()
	}

	apiError := &APIError{Summary: message, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError.Body = fmt.Sprintf("cannot read server message: %s", err.Error())
		return apiError
	}

	if em, err := jsonUnmarshal[apierr.ErrorMessage](body); err == nil {
		apiError.Message = em
	} else {
		apiError.Body = string(body)
	}
	return apiError
}

func jsonUnmarshal[T any](buf []byte) (*T, error) {
	ret := new(T)
	if err := json.Unmarshal(buf, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// unmarshalResponseDiscardingPayload drains a response wanted only for
// its status code.
func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor) error {
	scr := StatusCodeRangeOf(resp)
	if scr <= Status2xx {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return errorFromResponse(resp, messageFor)
}
