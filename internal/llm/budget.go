package llm

// token 预算常量
const (
	// ContextCapacity 模型假定的上下文容量
	ContextCapacity = 2048
	// BudgetFloor 响应预算下限，不允许请求过小的回复
	BudgetFloor = 512
	// charsPerToken 估算比例：约 4 个字符折合 1 个 token，非真实分词
	charsPerToken = 4
)

// EstimateTokens 估算消息序列的 token 开销
func EstimateTokens(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += len(msg.Content)
	}
	return total / charsPerToken
}

// ResponseBudget 根据已有消息推算响应长度上限
// 结果始终落在 [BudgetFloor, ContextCapacity] 区间内；空输入返回 ContextCapacity
func ResponseBudget(messages []Message) int {
	budget := ContextCapacity - EstimateTokens(messages)
	if budget < BudgetFloor {
		return BudgetFloor
	}
	if budget > ContextCapacity {
		return ContextCapacity
	}
	return budget
}
