package types

// SecureObject 是对象列表接口的单项：存储定位信息加上临时下载链接.
// PreSignedURL 每次请求现算，绝不持久化.
type SecureObject struct {
	ID           uint   `json:"id"`
	Host         string `json:"host"`
	Bucket       string `json:"bucket"`
	Key          string `json:"key"`
	PreSignedURL string `json:"pre_signed_url"`
}
