package respond

// 推送给浏览器的事件类型
const (
	EventToast   = "toast"
	EventInvites = "invites"
)

// Event 通过 WebSocket / Kafka 传递的挂件事件
type Event struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId"`
	Toast     *ToastRespond `json:"toast,omitempty"`
	Invites   []InviteCard  `json:"invites"`
}
