package utils

import (
	"net/http"

	"stella-settlement-api/internal/constant"
	"stella-settlement-api/internal/dto"
)

// Response 统一响应格式
type Response struct {
	Status     int         `json:"status"`
	Success    bool        `json:"success"`
	Code       int         `json:"code"`
	Message    string      `json:"message,omitempty"`
	ErrorCode  string      `json:"errorCode,omitempty"`
	Duplicate  bool        `json:"duplicate,omitempty"`
	OrderID    string      `json:"orderId,omitempty"`
	ProductIDs []string    `json:"productIds,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	TraceID    string      `json:"traceId,omitempty"`
}

// Success 成功响应
func Success(data interface{}) Response {
	return Response{Status: http.StatusOK, Success: true, Code: constant.CodeSuccess, Data: data}
}

// Settled 结算成功，订单号与商品在顶层方便回调方读取
func Settled(res *dto.SettleResult) Response {
	r := Success(res)
	r.OrderID = formatID(res.OrderID)
	r.ProductIDs = res.ProductIDs
	return r
}

// Error 错误响应，返回 HTTP 状态码与响应体；非 CustomError 不暴露内部信息
func Error(err error, traceID string) (int, Response) {
	ce, ok := constant.AsError(err)
	if !ok {
		info, _ := constant.GetErrorInfo(constant.CodeSystemError)
		return http.StatusInternalServerError, Response{
			Status:    http.StatusInternalServerError,
			Code:      constant.CodeSystemError,
			Message:   info.EN,
			ErrorCode: info.Kind,
			TraceID:   traceID,
		}
	}
	r := Response{
		Status:    ce.Status(),
		Code:      ce.Code(),
		Message:   ce.Message(),
		ErrorCode: ce.Kind(),
		TraceID:   traceID,
	}
	// 系统类错误只返回通用描述
	if ce.Status() >= http.StatusInternalServerError {
		if info, exists := constant.GetErrorInfo(ce.Code()); exists {
			r.Message = info.EN
		}
	}
	if data, ok := ce.Data().(map[string]interface{}); ok {
		if v, ok := data["orderId"].(string); ok {
			r.OrderID = v
		}
		if v, ok := data["productIds"].([]string); ok {
			r.ProductIDs = v
		}
	}
	return r.Status, r
}

// Duplicate 重复结算按 200 返回，回调方不再重试
func Duplicate(err error, traceID string) Response {
	_, r := Error(err, traceID)
	r.Status = http.StatusOK
	r.Duplicate = true
	return r
}

// InvalidParams 请求体校验失败
func InvalidParams(msg, traceID string) Response {
	info, _ := constant.GetErrorInfo(constant.CodeInvalidParams)
	return Response{
		Status:    http.StatusBadRequest,
		Code:      constant.CodeInvalidParams,
		Message:   msg,
		ErrorCode: info.Kind,
		TraceID:   traceID,
	}
}
