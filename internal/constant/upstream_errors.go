package constant

// 上游（支付平台 / 营销平台）错误码 (3xxx)
const (
	// CodeUpstreamError 上游返回未知错误或网络异常
	CodeUpstreamError = 3000

	// CodeUpstreamRejected 上游明确拒绝请求
	// 示例：结账会话不存在、关联账户已停用
	CodeUpstreamRejected = 3002
)
