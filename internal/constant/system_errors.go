package constant

// 系统级错误码 (1xxx)
const (
	CodeSuccess       = 0    // 操作成功
	CodeSystemError   = 1000 // 系统内部错误，服务器遇到意外情况无法完成请求
	CodeDatabaseError = 1001 // 数据库操作失败，包括连接失败、查询错误、事务异常等
	CodeRedisError    = 1002 // Redis缓存服务错误
	CodeTimeout       = 1005 // 请求处理超时
)

// 参数错误码
const (
	CodeInvalidParams    = 1100 // 参数格式错误，请求参数不符合预期格式或规范
	CodeMissingParams    = 1101 // 缺少必要参数
	CodeParamsRangeError = 1104 // 参数范围错误，如价格为负、费率超出 0-100
	CodeDuplicateRequest = 1105 // 相同结算请求正在处理中
)

// 认证授权错误码
const (
	CodeUnauthorized   = 1200 // 未授权访问
	CodeSignatureError = 1203 // 签名验证失败
)
