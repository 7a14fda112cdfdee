package app

import "lovehome/internal/domain"

// Code is the application status carried in every response envelope.
type Code string

const (
	CodeOK       Code = "0"
	CodeDBErr    Code = "4001"
	CodeNoData   Code = "4002"
	CodeParamErr Code = "4103"
	CodeLoginErr Code = "4101"
	CodeThirdErr Code = "4301"
)

type Envelope struct {
	Errno  Code   `json:"errno"`
	Errmsg string `json:"errmsg"`
	Data   any    `json:"data,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Errno: CodeOK, Errmsg: "OK", Data: data}
}

func Fail(code Code, msg string) Envelope {
	return Envelope{Errno: code, Errmsg: msg}
}

// houseListData is the cacheable portion of a list response.
type houseListData struct {
	Houses      []domain.HouseListItem `json:"houses"`
	TotalPage   int                    `json:"total_page"`
	CurrentPage int                    `json:"current_page"`
}
