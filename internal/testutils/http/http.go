// Package http builds echo contexts for handler tests.
package http

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/pkg/utils"
)

type RequestOption func(req *http.Request) *http.Request

func WithHeader(key string, value string, values ...string) RequestOption {
	return func(req *http.Request) *http.Request {
		req.Header.Add(key, value)
		for _, v := range values {
			req.Header.Add(key, v)
		}
		return req
	}
}

// ContentType = WithHeader("Content-Type", ctyp)
func ContentType(ctyp string) RequestOption {
	return WithHeader("Content-Type", ctyp)
}

// Chunked = WithHeader("Transfer-Encoding", "chunked")
func Chunked() RequestOption {
	return WithHeader("Transfer-Encoding", "chunked")
}

// WithTrailer declares the trailer key in the Trailer header and sets
// its values.
func WithTrailer(key string, value string, values ...string) RequestOption {
	return func(req *http.Request) *http.Request {
		if _, ok := utils.First(
			req.Header["Trailer"],
			func(t string) bool { return t == key },
		); !ok {
			req.Header.Add("Trailer", key)
		}
		if req.Trailer == nil {
			req.Trailer = map[string][]string{}
		}
		req.Trailer.Add(key, value)
		for _, v := range values {
			req.Trailer.Add(key, v)
		}
		return req
	}
}

func request(e *echo.Echo, method string, target string, body io.Reader, reqopts []RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	for _, opt := range reqopts {
		req = opt(req)
	}
	resp := httptest.NewRecorder()

	return e.NewContext(req, resp), resp
}

func Get(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodGet, target, nil, reqopts)
}

func Post(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodPost, target, data, reqopts)
}

func Put(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodPut, target, data, reqopts)
}

func Delete(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodDelete, target, nil, reqopts)
}
