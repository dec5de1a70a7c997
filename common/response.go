package common

import (
	"encoding/json"
	"net/http"
	"reflect"
)

const (
	ResultSuccess = "Success"
	ResultError   = "Error"
	SuccessCode   = "0000"
)

// Response is the envelope shared by every JSON response.
type Response struct {
	Result       string `json:"result"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	IsNeedLogin  bool   `json:"isNeedLogin"`
	AccessDenied bool   `json:"accessDenied"`
}

type DataResponse struct {
	Response
	Data interface{} `json:"data"`
}

type ListResponse struct {
	Response
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

type errorResponse struct {
	Response
	Errors map[string]string `json:"errors,omitempty"`
}

func success(message string) Response {
	if message == "" {
		message = "OK"
	}
	return Response{Result: ResultSuccess, Code: SuccessCode, Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteOK writes a success envelope without payload.
func WriteOK(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, success(message))
}

func WriteData(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, DataResponse{Response: success(message), Data: data})
}

// WriteList writes a paged list. A nil slice is written as [].
func WriteList(w http.ResponseWriter, items interface{}, total int64, page PageRequest) {
	if v := reflect.ValueOf(items); !v.IsValid() || (v.Kind() == reflect.Slice && v.IsNil()) {
		items = []struct{}{}
	}
	WriteJSON(w, http.StatusOK, ListResponse{
		Response: success(""),
		Items:    items,
		Total:    total,
		Page:     page.Page,
		Size:     page.Size,
	})
}
