package shared

// Knowledge base permissions declared for RBAC.
const (
	PermArticleView    = "article:view"
	PermArticleCreate  = "article:create"
	PermArticleEdit    = "article:edit"
	PermArticlePublish = "article:publish"
)

// KnowledgeScopes lists all permissions related to the knowledge base module.
func KnowledgeScopes() []string {
	return []string{
		PermArticleView,
		PermArticleCreate,
		PermArticleEdit,
		PermArticlePublish,
	}
}
