package model

// RawMessage 一封邮件的原始内容 + 来源提供的元数据
type RawMessage struct {
	ID      string
	Subject string
	From    string
	// Date 保留来源/邮件头的原始格式，不做二次解析
	Date    string
	Snippet string
	Raw     []byte
}

// ParsedEmail 从邮件容器中提取出的纯文本视图
type ParsedEmail struct {
	Subject string
	From    string
	Date    string
	// Body 永远不为 nil 语义：没有正文时为空串
	Body string
}

// SummaryResult completion 服务返回的摘要与语气
type SummaryResult struct {
	Summary string `json:"summary"`
	Tone    string `json:"tone"`
}

// InboxBrief 批量处理时每封邮件的结果记录
type InboxBrief struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
	// DaysLeft 为 nil 表示没有检测到截止日期
	DaysLeft *int   `json:"days_left"`
	Urgency  int    `json:"urgency"`
	Summary  string `json:"summary"`
	Tone     string `json:"tone"`
	// Error 记录该邮件的 completion 失败，不影响批次中的其他邮件
	Error string `json:"error,omitempty"`
}
