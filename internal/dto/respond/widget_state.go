package respond

// ToastRespond toast 状态
type ToastRespond struct {
	Visible bool   `json:"visible"`
	Message string `json:"message"`
}

// WidgetStateRespond 挂件完整状态快照
type WidgetStateRespond struct {
	Modal   string       `json:"modal"` // closed / editing / submitting
	Email   string       `json:"email"`
	Invites []InviteCard `json:"invites"`
	Toast   ToastRespond `json:"toast"`
	Refresh int64        `json:"refresh"`
}

// OperationRespond 一次操作的结果
type OperationRespond struct {
	Toast   string `json:"toast"`
	Modal   string `json:"modal,omitempty"`
	Refresh int64  `json:"refresh,omitempty"`
}
