package dto

type MsgResponse struct {
	Msg string `json:"msg"`
}

func NewMsgResponse(msg string) MsgResponse {
	return MsgResponse{
		Msg: msg,
	}
}

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type ErrorsResponse struct {
	Errors []FieldError `json:"errors"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
