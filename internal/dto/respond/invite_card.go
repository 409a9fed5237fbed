package respond

// InviteCard 一条待处理好友申请渲染出的卡片
type InviteCard struct {
	Key   string `json:"key"`   // friend-<email>
	Email string `json:"email"` // 申请人邮箱
	Text  string `json:"text"`  // From: <email>
	// Actions 卡片按钮，顺序与页面一致：Reject 在前
	Actions []CardAction `json:"actions"`
}

// CardAction 卡片上的按钮
type CardAction struct {
	Label  string `json:"label"`  // Reject / Accept
	Method string `json:"method"` // PUT
	Path   string `json:"path"`   // 浏览器调用的路径
}
