package generation

// Part 模型响应片段，仅有文本与图片两种实现
type Part interface {
	isPart()
}

// TextPart 模型返回的文本片段
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart 模型返回的内联图片
type ImagePart struct {
	MIMEType string
	Data     []byte
}

func (ImagePart) isPart() {}
