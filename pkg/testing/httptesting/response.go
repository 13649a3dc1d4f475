package httptesting

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

func BuildResponse(code int, payload []byte) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Body:          io.NopCloser(bytes.NewBuffer(payload)),
		ContentLength: int64(len(payload)),
		Header:        http.Header{},
	}
}

func BuildResponseString(code int, payload string) *http.Response {
	return BuildResponse(code, []byte(payload))
}

func BuildResponseJson(code int, payload interface{}) *http.Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return BuildResponseString(http.StatusInternalServerError, err.Error())
	}

	resp := BuildResponse(code, data)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
