package shared

// Messaging and live chat permissions declared for RBAC.
const (
	PermMessageView = "message:view"
	PermMessageSend = "message:send"

	PermLivechatView = "livechat:view"
	PermLivechatJoin = "livechat:join"
)

// MessagingScopes lists all permissions related to the messaging module.
func MessagingScopes() []string {
	return []string{
		PermMessageView,
		PermMessageSend,
		PermLivechatView,
		PermLivechatJoin,
	}
}
