package transport

// RunTriggerRequest asks the service to start a synchronization run.
type RunTriggerRequest struct {
	DryRun        bool     `json:"dry_run"`
	TemplateID    string   `json:"template_id"`
	IncludedUsers []string `json:"included_users"`
}
